// Package models provides the shared squad types used by the orchestrator, the pane allocator,
// the messaging tool and the CLI.
package models

import "time"

// Agent is one squad member as declared in the squad configuration. Immutable once loaded.
type Agent struct {
	Name           string `json:"name" yaml:"name"`
	PromptRef      string `json:"prompt,omitempty" yaml:"prompt"`
	NeedsIsolation bool   `json:"worktree,omitempty" yaml:"worktree"`
}

// Pane is one terminal pane of the squad's multiplexer session, bound to one agent.
// ID is the squad-level pane identifier ("0", "1", ...); Target is the multiplexer's own
// address for the pane (e.g. tmux "%3") when known.
type Pane struct {
	ID        string `json:"id"`
	AgentName string `json:"agent_name"`
	Index     int    `json:"index"`
	Target    string `json:"target,omitempty"`
}

// AgentStatus is the run-time state of one agent in a squad.
type AgentStatus struct {
	Name             string     `json:"name"`
	PaneID           string     `json:"pane_id"`
	State            AgentState `json:"state"`
	LastActivityTime time.Time  `json:"last_activity_time"`
}
