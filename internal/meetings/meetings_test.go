package meetings_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/meetings"
)

func TestValidate(t *testing.T) {
	agentID := uuid.NewString()

	tests := []struct {
		name    string
		draft   meetings.Draft
		wantErr map[string]string
	}{
		{
			name:    "empty",
			draft:   meetings.Draft{},
			wantErr: map[string]string{"name": meetings.MsgNameRequired, "agent_id": meetings.MsgAgentRequired},
		},
		{
			name:    "malformed agent",
			draft:   meetings.Draft{Name: "Standup", AgentID: "abc"},
			wantErr: map[string]string{"agent_id": meetings.MsgAgentInvalid},
		},
		{
			name:    "long name",
			draft:   meetings.Draft{Name: strings.Repeat("n", meetings.MaxNameLength+1), AgentID: agentID},
			wantErr: map[string]string{"name": meetings.MsgNameTooLong},
		},
		{
			name:    "unknown status",
			draft:   meetings.Draft{Name: "Standup", AgentID: agentID, Status: "paused"},
			wantErr: map[string]string{"status": meetings.MsgStatusInvalid},
		},
		{
			name:  "valid",
			draft: meetings.Draft{Name: " Standup ", AgentID: agentID, Status: "active"},
		},
		{
			name:  "valid without status",
			draft: meetings.Draft{Name: "Standup", AgentID: agentID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, errs := meetings.Validate(tt.draft)

			if len(errs) != len(tt.wantErr) {
				t.Fatalf("errors = %v, want %v", errs, tt.wantErr)
			}
			for field, msg := range tt.wantErr {
				if errs.Get(field) != msg {
					t.Errorf("errors[%s] = %q, want %q", field, errs.Get(field), msg)
				}
			}
			if tt.wantErr != nil {
				return
			}
			if cmd.Name != "Standup" {
				t.Errorf("Name = %q, want %q", cmd.Name, "Standup")
			}
			if cmd.AgentID.String() != agentID {
				t.Errorf("AgentID = %s, want %s", cmd.AgentID, agentID)
			}
			if string(cmd.Status) != tt.draft.Status {
				t.Errorf("Status = %q, want %q", cmd.Status, tt.draft.Status)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range meetings.Statuses {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if meetings.Status("paused").Valid() {
		t.Error("paused.Valid() = true")
	}
}

func TestDraftOf(t *testing.T) {
	m := &meetings.Meeting{Name: "Review", AgentID: uuid.New(), Status: meetings.StatusCompleted}

	d := meetings.DraftOf(m)
	if d.Name != m.Name || d.AgentID != m.AgentID.String() || d.Status != "completed" {
		t.Errorf("DraftOf() = %+v", d)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{meetings.ErrNotFound, http.StatusNotFound},
		{meetings.ErrDuplicate, http.StatusConflict},
		{meetings.ErrAgentNotFound, http.StatusUnprocessableEntity},
		{meetings.ErrInvalidStatus, http.StatusUnprocessableEntity},
		{fmt.Errorf("update: %w", meetings.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := meetings.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		values    url.Values
		wantQuery string
	}{
		{"empty", url.Values{}, ""},
		{"status", url.Values{"status": {"active"}}, "status=active"},
		{"unknown status ignored", url.Values{"status": {"paused"}}, ""},
		{"agent", url.Values{"agent_id": {id.String()}}, "agent_id=" + id.String()},
		{"malformed agent ignored", url.Values{"agent_id": {"x"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := meetings.FiltersFromQuery(tt.values).Values().Encode()
			if got != tt.wantQuery {
				t.Errorf("Values() = %q, want %q", got, tt.wantQuery)
			}
		})
	}
}
