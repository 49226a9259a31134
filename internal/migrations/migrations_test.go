package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-meet/internal/migrations"
)

func TestFS_PairedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups[strings.TrimSuffix(f, ".up.sql")] = true
		case strings.HasSuffix(f, ".down.sql"):
			downs[strings.TrimSuffix(f, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %q", f)
		}
	}

	for name := range ups {
		if !downs[name] {
			t.Errorf("migration %q has no down file", name)
		}
	}
	for name := range downs {
		if !ups[name] {
			t.Errorf("migration %q has no up file", name)
		}
	}
}
