package cache

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Entry is one cached query result. Data holds the JSON encoding of the value.
type Entry struct {
	Key           Key             `json:"key" cbor:"key"`
	Data          json.RawMessage `json:"data" cbor:"data"`
	UpdatedAt     time.Time       `json:"updated_at" cbor:"updated_at"`
	Stale         bool            `json:"stale,omitempty" cbor:"stale,omitempty"`
	InvalidatedAt time.Time       `json:"invalidated_at,omitzero" cbor:"invalidated_at"`
}

// Snapshot is the serializable state of a cache handed from one scope to another.
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// Len returns the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// JSON encodes the snapshot for embedding in a page.
func (s Snapshot) JSON() ([]byte, error) {
	if s.Entries == nil {
		s.Entries = []Entry{}
	}
	return json.Marshal(s)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cache: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeEntry(e Entry) ([]byte, error) {
	return encMode.Marshal(e)
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	err := decMode.Unmarshal(data, &e)
	return e, err
}
