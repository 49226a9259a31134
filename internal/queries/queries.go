// Package queries names the cache keys for agent and meeting reads and loads
// them through a cache.Cache.
package queries

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/internal/agents"
	"github.com/JaimeStill/agent-meet/internal/meetings"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

// Cache entities and operations.
const (
	Agents   = "agents"
	Meetings = "meetings"

	GetOne  = "getOne"
	GetMany = "getMany"
)

func one(entity, id string) cache.Key {
	return cache.NewKey(entity, GetOne, "id", id)
}

func many(entity string, page pagination.PageRequest, filters url.Values) cache.Key {
	k := cache.Key{Entity: entity, Operation: GetMany, Params: map[string]string{}}
	for name := range filters {
		k.Params[name] = filters.Get(name)
	}
	pv := page.Values()
	for name := range pv {
		k.Params[name] = pv.Get(name)
	}
	return k
}

// AgentOne keys agents.getOne{id}.
func AgentOne(id string) cache.Key { return one(Agents, id) }

// AgentMany keys agents.getMany for one page and filter set.
func AgentMany(page pagination.PageRequest, f agents.Filters) cache.Key {
	return many(Agents, page, f.Values())
}

// AgentLists matches every agents.getMany entry.
func AgentLists() cache.Key { return cache.Key{Entity: Agents, Operation: GetMany} }

// MeetingOne keys meetings.getOne{id}.
func MeetingOne(id string) cache.Key { return one(Meetings, id) }

// MeetingMany keys meetings.getMany for one page and filter set.
func MeetingMany(page pagination.PageRequest, f meetings.Filters) cache.Key {
	return many(Meetings, page, f.Values())
}

// MeetingLists matches every meetings.getMany entry.
func MeetingLists() cache.Key { return cache.Key{Entity: Meetings, Operation: GetMany} }

// Agent reads one agent through c.
func Agent(ctx context.Context, c *cache.Cache, sys agents.System, id uuid.UUID) (*agents.Agent, error) {
	return cache.Fetch(ctx, c, AgentOne(id.String()), func(ctx context.Context) (*agents.Agent, error) {
		return sys.GetOne(ctx, id)
	})
}

// AgentPage reads one page of agents through c.
func AgentPage(ctx context.Context, c *cache.Cache, sys agents.System, page pagination.PageRequest, f agents.Filters) (*pagination.PageResult[agents.Agent], error) {
	return cache.Fetch(ctx, c, AgentMany(page, f), func(ctx context.Context) (*pagination.PageResult[agents.Agent], error) {
		return sys.GetMany(ctx, page, f)
	})
}

// Meeting reads one meeting through c.
func Meeting(ctx context.Context, c *cache.Cache, sys meetings.System, id uuid.UUID) (*meetings.Meeting, error) {
	return cache.Fetch(ctx, c, MeetingOne(id.String()), func(ctx context.Context) (*meetings.Meeting, error) {
		return sys.GetOne(ctx, id)
	})
}

// MeetingPage reads one page of meetings through c.
func MeetingPage(ctx context.Context, c *cache.Cache, sys meetings.System, page pagination.PageRequest, f meetings.Filters) (*pagination.PageResult[meetings.Meeting], error) {
	return cache.Fetch(ctx, c, MeetingMany(page, f), func(ctx context.Context) (*pagination.PageResult[meetings.Meeting], error) {
		return sys.GetMany(ctx, page, f)
	})
}

// AgentOptionsPageSize bounds the agent picker list.
const AgentOptionsPageSize = 100

// AgentOptions reads the agents offered by the meeting form's agent picker.
func AgentOptions(ctx context.Context, c *cache.Cache, sys agents.System, search string) (*pagination.PageResult[agents.Agent], error) {
	page := pagination.PageRequest{Page: 1, PageSize: AgentOptionsPageSize}
	if search != "" {
		page.Search = &search
	}
	return AgentPage(ctx, c, sys, page, agents.Filters{})
}

// InvalidateAgent marks agent lists stale and, when id is set, the agent's
// getOne entry.
func InvalidateAgent(ctx context.Context, c *cache.Cache, id string) error {
	if _, err := c.Invalidate(ctx, AgentLists()); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	_, err := c.Invalidate(ctx, AgentOne(id))
	return err
}

// InvalidateMeeting marks meeting lists stale and, when id is set, the
// meeting's getOne entry.
func InvalidateMeeting(ctx context.Context, c *cache.Cache, id string) error {
	if _, err := c.Invalidate(ctx, MeetingLists()); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	_, err := c.Invalidate(ctx, MeetingOne(id))
	return err
}
