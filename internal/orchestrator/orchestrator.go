// Package orchestrator sequences squad setup: session probe, isolated workdirs, pane layout and
// per-agent launch, with rollback of the tmux session when the layout step fails.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ankittk/agentsquad/internal/config"
	"github.com/ankittk/agentsquad/internal/git"
	"github.com/ankittk/agentsquad/internal/otel"
	"github.com/ankittk/agentsquad/internal/tmux"
	"github.com/ankittk/agentsquad/pkg/models"
)

// State is the orchestrator's position in the setup sequence.
type State int

const (
	StateIdle State = iota
	StateCheckingSession
	StateResuming
	StateProvisioning
	StateLayingOut
	StateLaunching
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingSession:
		return "checking-session"
	case StateResuming:
		return "resuming"
	case StateProvisioning:
		return "provisioning"
	case StateLayingOut:
		return "laying-out"
	case StateLaunching:
		return "launching"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PaneAllocator is the subset of *tmux.Allocator the orchestrator drives.
type PaneAllocator interface {
	CheckExistingSession(ctx context.Context) (bool, error)
	AttachToSession(ctx context.Context, sq config.Squad) ([]models.Pane, error)
	CreateLayout(ctx context.Context, sq config.Squad, workDirs map[string]string) ([]models.Pane, error)
	KillSession(ctx context.Context) error
	GetAllPanes() []models.Pane
	GetSessionName() string
}

// Provisioner creates isolated workdirs. git.Provisioner implements it.
type Provisioner interface {
	CreateIsolatedWorkdir(ctx context.Context, rootDir, baseDir, name string, opts git.WorkdirOptions) (git.Workdir, error)
}

// Options configures an Orchestrator. Zero values select tmux, git worktrees and NoLaunch.
type Options struct {
	NewAllocator func(sessionName string) PaneAllocator
	Provisioner  Provisioner
	Launch       LaunchStrategy
	// RootDir is the repository root isolated workdirs are created under.
	RootDir string
	// ResolveRoot, when set, replaces RootDir. It is called at most once per setup, and only
	// when a new layout needs an isolated workdir, so resuming works outside a repository.
	ResolveRoot func(ctx context.Context) (string, error)
	Now         func() time.Time
}

// SquadContext is the run-time state of an active squad.
type SquadContext struct {
	SessionName string
	Config      config.Squad
	Agents      []models.AgentStatus
	StartTime   time.Time
}

// SetupResult is returned by a successful SetupTeam.
type SetupResult struct {
	SessionName         string
	Panes               []models.Pane
	Agents              []models.AgentStatus
	IsResumed           bool
	CreatedIsolatedDirs []string
}

// Orchestrator owns one squad run. Not safe for concurrent SetupTeam calls.
type Orchestrator struct {
	opts Options

	mu    sync.Mutex
	state State
	alloc PaneAllocator
	squad *SquadContext
}

func New(opts Options) *Orchestrator {
	if opts.NewAllocator == nil {
		opts.NewAllocator = func(name string) PaneAllocator { return tmux.NewAllocator(name) }
	}
	if opts.Provisioner == nil {
		opts.Provisioner = git.Provisioner{}
	}
	if opts.Launch == nil {
		opts.Launch = NoLaunch
	}
	if opts.RootDir == "" {
		opts.RootDir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{opts: opts}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Context returns the active squad, or nil when none is set up.
func (o *Orchestrator) Context() *SquadContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.squad
}

// Allocator returns the allocator of the last setup, or nil.
func (o *Orchestrator) Allocator() PaneAllocator {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.alloc
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	slog.Debug("orchestrator state", "state", s.String())
}

func (o *Orchestrator) fail(kind ErrorKind, agent string, leftover []string, err error) error {
	o.setState(StateError)
	if len(leftover) > 0 {
		slog.Warn("isolated workdirs left on disk", "dirs", leftover)
	}
	return &Error{Kind: kind, Agent: agent, LeftoverDirs: leftover, Err: err}
}

// SetupTeam resumes the tmux session named sessionName when it exists, and otherwise provisions
// isolated workdirs, lays out one pane per agent and launches each agent. It stops at the first
// failure; only a failed layout is rolled back, by killing the session.
func (o *Orchestrator) SetupTeam(ctx context.Context, sq config.Squad, sessionName string) (res SetupResult, err error) {
	start := o.opts.Now()
	defer func() {
		otel.RecordSetup(ctx, sessionName, err == nil, res.IsResumed, time.Since(start))
	}()

	if sessionName == "" {
		return SetupResult{}, o.fail(KindConfig, "", nil, errors.New("session name is required"))
	}
	if err := sq.Validate(); err != nil {
		return SetupResult{}, o.fail(KindConfig, "", nil, err)
	}

	o.setState(StateCheckingSession)
	alloc := o.opts.NewAllocator(sessionName)
	o.mu.Lock()
	o.alloc = alloc
	o.squad = nil
	o.mu.Unlock()

	exists, err := alloc.CheckExistingSession(ctx)
	if err != nil {
		return SetupResult{}, o.fail(KindSessionCheck, "", nil, err)
	}
	if exists {
		return o.resume(ctx, alloc, sq, sessionName, start)
	}

	o.setState(StateProvisioning)
	var created []string
	workDirs := make(map[string]string)
	var (
		root         string
		rootResolved bool
	)
	for _, agent := range sq.Agents {
		if !agent.NeedsIsolation {
			continue
		}
		if !rootResolved {
			if root, err = o.rootDir(ctx); err != nil {
				return SetupResult{}, o.fail(KindIsolation, agent.Name, created, fmt.Errorf("resolve repository root: %w", err))
			}
			rootResolved = true
		}
		wd, err := o.opts.Provisioner.CreateIsolatedWorkdir(ctx, root, sq.WorktreeDir, agent.Name,
			git.WorkdirOptions{Branch: agent.Name, Base: "HEAD"})
		if err != nil {
			return SetupResult{}, o.fail(KindIsolation, agent.Name, created, err)
		}
		if wd.IsNew {
			created = append(created, wd.Path)
		}
		workDirs[agent.Name] = wd.Path
		slog.Info("isolated workdir ready", "agent", agent.Name, "path", wd.Path, "new", wd.IsNew)
	}

	o.setState(StateLayingOut)
	panes, err := alloc.CreateLayout(ctx, sq, workDirs)
	if err != nil {
		o.rollback(ctx, alloc)
		return SetupResult{}, o.fail(KindLayout, "", created, err)
	}
	otel.RecordPanesCreated(ctx, sessionName, len(panes))

	o.setState(StateLaunching)
	byAgent := make(map[string]models.Pane, len(panes))
	for _, p := range panes {
		byAgent[p.AgentName] = p
	}
	statuses := make([]models.AgentStatus, 0, len(sq.Agents))
	for _, agent := range sq.Agents {
		pane, ok := byAgent[agent.Name]
		if !ok {
			return SetupResult{}, o.fail(KindLaunch, agent.Name, created, errors.New("no pane allocated"))
		}
		state, err := o.opts.Launch.Launch(ctx, agent, pane)
		if err != nil {
			return SetupResult{}, o.fail(KindLaunch, agent.Name, created, err)
		}
		statuses = append(statuses, models.AgentStatus{
			Name:             agent.Name,
			PaneID:           pane.ID,
			State:            state,
			LastActivityTime: o.opts.Now(),
		})
	}

	o.ready(sessionName, sq, statuses, start)
	slog.Info("squad ready", "session", sessionName, "agents", len(statuses), "isolated", len(created))
	return SetupResult{
		SessionName:         sessionName,
		Panes:               panes,
		Agents:              statuses,
		CreatedIsolatedDirs: created,
	}, nil
}

func (o *Orchestrator) rootDir(ctx context.Context) (string, error) {
	if o.opts.ResolveRoot != nil {
		return o.opts.ResolveRoot(ctx)
	}
	return o.opts.RootDir, nil
}

func (o *Orchestrator) resume(ctx context.Context, alloc PaneAllocator, sq config.Squad, sessionName string, start time.Time) (SetupResult, error) {
	o.setState(StateResuming)
	panes, err := alloc.AttachToSession(ctx, sq)
	if err != nil {
		return SetupResult{}, o.fail(KindSessionCheck, "", nil, err)
	}
	byAgent := make(map[string]models.Pane, len(panes))
	for _, p := range panes {
		byAgent[p.AgentName] = p
	}
	now := o.opts.Now()
	statuses := make([]models.AgentStatus, 0, len(sq.Agents))
	for _, agent := range sq.Agents {
		st := models.AgentStatus{Name: agent.Name, State: models.StateStopped, LastActivityTime: now}
		if p, ok := byAgent[agent.Name]; ok {
			st.PaneID = p.ID
			st.State = models.StateRunning
		}
		statuses = append(statuses, st)
	}
	o.ready(sessionName, sq, statuses, start)
	slog.Info("squad resumed", "session", sessionName, "panes", len(panes))
	return SetupResult{
		SessionName: sessionName,
		Panes:       panes,
		Agents:      statuses,
		IsResumed:   true,
	}, nil
}

func (o *Orchestrator) ready(sessionName string, sq config.Squad, statuses []models.AgentStatus, start time.Time) {
	o.mu.Lock()
	o.squad = &SquadContext{SessionName: sessionName, Config: sq, Agents: statuses, StartTime: start}
	o.state = StateReady
	o.mu.Unlock()
}

// rollback kills a session the failed layout left behind. Errors are logged only.
func (o *Orchestrator) rollback(ctx context.Context, alloc PaneAllocator) {
	if len(alloc.GetAllPanes()) == 0 {
		return
	}
	if err := alloc.KillSession(ctx); err != nil {
		slog.Warn("rollback: kill session failed", "session", alloc.GetSessionName(), "error", err)
		return
	}
	slog.Info("rollback: session killed", "session", alloc.GetSessionName())
}

// TerminateSquad kills the active squad's session and clears the squad context. The context is
// cleared even when the kill fails; the failure is returned.
func (o *Orchestrator) TerminateSquad(ctx context.Context) error {
	o.mu.Lock()
	alloc, squad := o.alloc, o.squad
	o.squad = nil
	o.state = StateIdle
	o.mu.Unlock()
	if alloc == nil || squad == nil {
		return ErrNoSquad
	}
	if err := alloc.KillSession(ctx); err != nil {
		return fmt.Errorf("terminate squad %q: %w", squad.SessionName, err)
	}
	slog.Info("squad terminated", "session", squad.SessionName)
	return nil
}
