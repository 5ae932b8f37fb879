package orchestrator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies setup failures by the step that failed.
type ErrorKind int

const (
	KindConfig ErrorKind = iota
	KindSessionCheck
	KindIsolation
	KindLayout
	KindLaunch
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindSessionCheck:
		return "session check"
	case KindIsolation:
		return "isolation"
	case KindLayout:
		return "layout"
	case KindLaunch:
		return "launch"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by SetupTeam. Agent is set for per-agent failures. LeftoverDirs lists
// isolated directories created by this run that were not cleaned up.
type Error struct {
	Kind         ErrorKind
	Agent        string
	LeftoverDirs []string
	Err          error
}

func (e *Error) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("%s error for agent %q: %v", e.Kind, e.Agent, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a setup error, and false if err is not an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// ErrNoSquad is returned by TerminateSquad when no squad is active.
var ErrNoSquad = errors.New("no active squad")
