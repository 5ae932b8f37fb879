package tmux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ankittk/agentsquad/internal/config"
	"github.com/ankittk/agentsquad/pkg/models"
)

var (
	// ErrNoAgents is returned by CreateLayout for a squad without agents. No session is created.
	ErrNoAgents = errors.New("squad has no agents")
	// ErrPaneNotFound is returned by SendKeys for a pane id outside the current mapping.
	ErrPaneNotFound = errors.New("pane not found")
)

const paneIDFormat = "#{pane_id}"

// Allocator owns one named tmux session and the mapping between its panes and the squad's agents.
type Allocator struct {
	sessionName string
	runner      CommandRunner

	mu        sync.RWMutex
	panes     []models.Pane
	nextIndex int
}

// NewAllocator returns an allocator for sessionName that shells out to tmux.
func NewAllocator(sessionName string) *Allocator {
	return NewAllocatorWithRunner(sessionName, execRunner{})
}

// NewAllocatorWithRunner returns an allocator using a custom command runner.
func NewAllocatorWithRunner(sessionName string, runner CommandRunner) *Allocator {
	return &Allocator{sessionName: sessionName, runner: runner}
}

func (a *Allocator) GetSessionName() string { return a.sessionName }

// CheckExistingSession reports whether the session exists. It never changes allocator state.
// A non-zero exit from has-session means "absent"; any other failure (tmux missing) is an error.
func (a *Allocator) CheckExistingSession(ctx context.Context) (bool, error) {
	if a.runner == nil {
		return false, errors.New("tmux runner unavailable")
	}
	out, err := a.runner.Run(ctx, []string{"has-session", "-t", a.sessionName})
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return false, fmt.Errorf("tmux has-session failed: %s: %w", msg, err)
		}
		return false, fmt.Errorf("tmux has-session failed: %w", err)
	}
	return true, nil
}

// CreateLayout creates the session with one pane per agent, in configuration order, and applies
// the final tiling. workDirs optionally maps agent names to the directory their pane starts in.
// The first failing tmux command aborts the layout and is returned; panes spawned before it stay
// in the mapping so the caller can kill the session.
func (a *Allocator) CreateLayout(ctx context.Context, sq config.Squad, workDirs map[string]string) ([]models.Pane, error) {
	if len(sq.Agents) == 0 {
		return nil, ErrNoAgents
	}
	a.mu.Lock()
	a.panes = nil
	a.nextIndex = 0
	a.mu.Unlock()

	total := len(sq.Agents)
	first := sq.Agents[0]
	args := []string{"new-session", "-d", "-s", a.sessionName, "-P", "-F", paneIDFormat}
	args = appendDir(args, workDirs[first.Name])
	out, err := run(ctx, a.runner, args...)
	if err != nil {
		return nil, fmt.Errorf("create session %q: %w", a.sessionName, err)
	}
	a.addPane(first.Name, strings.TrimSpace(string(out)))

	for i := 1; i < total; i++ {
		agent := sq.Agents[i]
		dir := SplitDirectionFor(sq.Layout, i, total)
		args := []string{"split-window", "-t", a.sessionName, dir.flag(), "-P", "-F", paneIDFormat}
		args = appendDir(args, workDirs[agent.Name])
		out, err := run(ctx, a.runner, args...)
		if err != nil {
			return nil, fmt.Errorf("split %s pane for agent %q: %w", dir, agent.Name, err)
		}
		a.addPane(agent.Name, strings.TrimSpace(string(out)))
		slog.Debug("pane created", "session", a.sessionName, "agent", agent.Name, "split", dir.String())
	}

	layout := FinalLayout(sq.Layout, total)
	if _, err := run(ctx, a.runner, "select-layout", "-t", a.sessionName, layout); err != nil {
		return nil, fmt.Errorf("apply layout %s: %w", layout, err)
	}
	return a.GetAllPanes(), nil
}

// AttachToSession rebuilds the pane mapping from a live session: panes are ordered by their tmux
// index and assigned to agents in configuration order.
func (a *Allocator) AttachToSession(ctx context.Context, sq config.Squad) ([]models.Pane, error) {
	out, err := run(ctx, a.runner, "list-panes", "-t", a.sessionName, "-F", "#{pane_index} #{pane_id}")
	if err != nil {
		return nil, fmt.Errorf("list panes of %q: %w", a.sessionName, err)
	}
	type livePane struct {
		index  int
		target string
	}
	var live []livePane
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		live = append(live, livePane{index: idx, target: fields[1]})
	}
	sort.Slice(live, func(i, j int) bool { return live[i].index < live[j].index })

	a.mu.Lock()
	a.panes = nil
	a.nextIndex = 0
	a.mu.Unlock()
	for i, lp := range live {
		if i >= len(sq.Agents) {
			break
		}
		a.addPane(sq.Agents[i].Name, lp.target)
	}
	return a.GetAllPanes(), nil
}

// KillSession kills the session. On success the pane mapping and index counter are reset.
func (a *Allocator) KillSession(ctx context.Context) error {
	if _, err := run(ctx, a.runner, "kill-session", "-t", a.sessionName); err != nil {
		return err
	}
	a.mu.Lock()
	a.panes = nil
	a.nextIndex = 0
	a.mu.Unlock()
	return nil
}

// SendKeys types text into the pane and presses Enter. Text is sent literally (-l) so words such
// as "Enter" or "C-c" inside it are not taken as key names.
func (a *Allocator) SendKeys(ctx context.Context, paneID, text string) error {
	pane, ok := a.paneByID(paneID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPaneNotFound, paneID)
	}
	target := a.target(pane)
	if _, err := run(ctx, a.runner, "send-keys", "-t", target, "-l", text); err != nil {
		return err
	}
	_, err := run(ctx, a.runner, "send-keys", "-t", target, "Enter")
	return err
}

func (a *Allocator) GetPaneByAgentName(name string) (models.Pane, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.panes {
		if p.AgentName == name {
			return p, true
		}
	}
	return models.Pane{}, false
}

// GetAllPanes returns a copy of the mapping ordered by pane index.
func (a *Allocator) GetAllPanes() []models.Pane {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Pane, len(a.panes))
	copy(out, a.panes)
	return out
}

func (a *Allocator) paneByID(id string) (models.Pane, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.panes {
		if p.ID == id {
			return p, true
		}
	}
	return models.Pane{}, false
}

func (a *Allocator) addPane(agentName, target string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := a.nextIndex
	a.nextIndex++
	a.panes = append(a.panes, models.Pane{
		ID:        strconv.Itoa(idx),
		AgentName: agentName,
		Index:     idx,
		Target:    target,
	})
}

func (a *Allocator) target(p models.Pane) string {
	if p.Target != "" {
		return p.Target
	}
	return fmt.Sprintf("%s:.%d", a.sessionName, p.Index)
}

func appendDir(args []string, dir string) []string {
	if dir == "" {
		return args
	}
	return append(args, "-c", dir)
}
