package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSeedData_Embedded(t *testing.T) {
	data, err := loadSeedData("")
	if err != nil {
		t.Fatalf("loadSeedData() error = %v", err)
	}
	if len(data.Agents) == 0 || len(data.Meetings) == 0 {
		t.Fatalf("embedded seed has %d agents and %d meetings", len(data.Agents), len(data.Meetings))
	}

	names := make(map[string]bool)
	for _, a := range data.Agents {
		names[a.Name] = true
	}
	for _, m := range data.Meetings {
		if !names[m.Agent] {
			t.Errorf("meeting %q references unknown agent %q", m.Name, m.Agent)
		}
	}
}

func TestLoadSeedData_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"blank agent name", "agents:\n  - name: '  '\n", "name is required"},
		{"missing meeting agent", "meetings:\n  - name: Sync\n", "agent is required"},
		{"invalid status", "meetings:\n  - name: Sync\n    agent: A\n    status: paused\n", "invalid status"},
		{"malformed", "agents: [", "parse seed data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := loadSeedData(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("loadSeedData() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSeedData_DefaultStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := "agents:\n  - name: ' A '\nmeetings:\n  - name: Sync\n    agent: A\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := loadSeedData(path)
	if err != nil {
		t.Fatalf("loadSeedData() error = %v", err)
	}
	if data.Agents[0].Name != "A" {
		t.Errorf("Agents[0].Name = %q, want %q", data.Agents[0].Name, "A")
	}
	if data.Meetings[0].Status != "upcoming" {
		t.Errorf("Meetings[0].Status = %q, want %q", data.Meetings[0].Status, "upcoming")
	}
}

func TestSeeders_Order(t *testing.T) {
	if len(seeders) != 2 {
		t.Fatalf("len(seeders) = %d, want 2", len(seeders))
	}
	if seeders[0].Name() != "agents" || seeders[1].Name() != "meetings" {
		t.Errorf("seeders = [%s %s], want [agents meetings]", seeders[0].Name(), seeders[1].Name())
	}
}
