package main

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/agent-meet/internal/meetings"
)

//go:embed seeds/*.yaml
var seedFiles embed.FS

const defaultSeedFile = "seeds/demo.yaml"

// SeedData is the YAML structure of a seed file.
type SeedData struct {
	Agents   []AgentSeed   `yaml:"agents"`
	Meetings []MeetingSeed `yaml:"meetings"`
}

type AgentSeed struct {
	Name         string `yaml:"name"`
	Instructions string `yaml:"instructions"`
}

// MeetingSeed names its agent rather than carrying an id.
type MeetingSeed struct {
	Name   string `yaml:"name"`
	Agent  string `yaml:"agent"`
	Status string `yaml:"status"`
}

// loadSeedData reads path, or the embedded demo file when path is empty.
func loadSeedData(path string) (*SeedData, error) {
	var content []byte
	var err error

	if path != "" {
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile(defaultSeedFile)
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data SeedData
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *SeedData) validate() error {
	for i, a := range d.Agents {
		d.Agents[i].Name = strings.TrimSpace(a.Name)
		if d.Agents[i].Name == "" {
			return fmt.Errorf("agent %d: name is required", i)
		}
	}
	for i, m := range d.Meetings {
		d.Meetings[i].Name = strings.TrimSpace(m.Name)
		if d.Meetings[i].Name == "" {
			return fmt.Errorf("meeting %d: name is required", i)
		}
		if strings.TrimSpace(m.Agent) == "" {
			return fmt.Errorf("meeting %q: agent is required", m.Name)
		}
		if m.Status == "" {
			d.Meetings[i].Status = string(meetings.StatusUpcoming)
		} else if !meetings.Status(m.Status).Valid() {
			return fmt.Errorf("meeting %q: invalid status %q", m.Name, m.Status)
		}
	}
	return nil
}
