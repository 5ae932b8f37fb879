package models

import (
	"fmt"
	"strings"
)

// AgentState is the lifecycle state of an agent.
type AgentState int

const (
	StateStarting AgentState = iota
	StateRunning
	StateStopped
	StateError
)

func (s AgentState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("AgentState(%d)", int(s))
}

func (s AgentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LayoutMode selects how panes are split and tiled.
type LayoutMode int

const (
	LayoutAuto LayoutMode = iota
	LayoutGrid
	LayoutMainVertical
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutGrid:
		return "grid"
	case LayoutMainVertical:
		return "main-vertical"
	}
	return "auto"
}

// ParseLayoutMode maps a configuration value to a LayoutMode. Empty means auto.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch strings.TrimSpace(s) {
	case "", "auto":
		return LayoutAuto, nil
	case "grid":
		return LayoutGrid, nil
	case "main-vertical":
		return LayoutMainVertical, nil
	}
	return LayoutAuto, fmt.Errorf("unknown layout mode %q (want auto, grid or main-vertical)", s)
}

func (m LayoutMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *LayoutMode) UnmarshalText(b []byte) error {
	v, err := ParseLayoutMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Limits for squad configuration.
const (
	MaxAgentNameLen = 20
)
