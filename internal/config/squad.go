package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ankittk/agentsquad/pkg/models"
	"gopkg.in/yaml.v3"
)

// DefaultSquadFile is the squad file looked up in the working directory when --config is not given.
const DefaultSquadFile = "squad.yaml"

// DefaultWorktreeDir is where isolated workdirs are created, relative to the repository root.
const DefaultWorktreeDir = ".worktrees"

// ErrInvalidSquad is returned (wrapped) for every squad file validation failure.
var ErrInvalidSquad = errors.New("invalid squad config")

// Squad is a validated squad configuration. Read-only for the duration of a run.
type Squad struct {
	Agents      []models.Agent
	Layout      models.LayoutMode
	WorktreeDir string
	// Path is the file the squad was loaded from; empty for squads built in code.
	Path string
}

// AgentNames returns agent names in configuration order.
func (s Squad) AgentNames() []string {
	names := make([]string, 0, len(s.Agents))
	for _, a := range s.Agents {
		names = append(names, a.Name)
	}
	return names
}

// Agent returns the agent with the given name.
func (s Squad) Agent(name string) (models.Agent, bool) {
	for _, a := range s.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return models.Agent{}, false
}

type squadFile struct {
	Layout      string         `yaml:"layout"`
	WorktreeDir string         `yaml:"worktree_dir"`
	Agents      []models.Agent `yaml:"agents"`
}

// LoadSquad reads and validates the squad file at path. Relative prompt paths are resolved against
// the file's directory.
func LoadSquad(path string) (Squad, error) {
	if path == "" {
		path = DefaultSquadFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Squad{}, fmt.Errorf("squad config %s not found", path)
		}
		return Squad{}, fmt.Errorf("read squad config: %w", err)
	}
	sq, err := ParseSquad(data)
	if err != nil {
		return Squad{}, fmt.Errorf("%s: %w", path, err)
	}
	sq.Path = path
	dir := filepath.Dir(path)
	for i := range sq.Agents {
		if ref := sq.Agents[i].PromptRef; ref != "" && !filepath.IsAbs(ref) {
			sq.Agents[i].PromptRef = filepath.Join(dir, ref)
		}
	}
	return sq, nil
}

// ParseSquad decodes a YAML (or JSON) squad document and validates it.
func ParseSquad(data []byte) (Squad, error) {
	var f squadFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Squad{}, fmt.Errorf("%w: %v", ErrInvalidSquad, err)
	}
	mode, err := models.ParseLayoutMode(f.Layout)
	if err != nil {
		return Squad{}, fmt.Errorf("%w: %v", ErrInvalidSquad, err)
	}
	sq := Squad{Agents: f.Agents, Layout: mode, WorktreeDir: f.WorktreeDir}
	if sq.WorktreeDir == "" {
		sq.WorktreeDir = DefaultWorktreeDir
	}
	if err := sq.Validate(); err != nil {
		return Squad{}, err
	}
	return sq, nil
}

// Validate checks agent count, name length (in characters) and name uniqueness.
func (s Squad) Validate() error {
	if len(s.Agents) == 0 {
		return fmt.Errorf("%w: at least one agent is required", ErrInvalidSquad)
	}
	seen := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return fmt.Errorf("%w: agent %d has no name", ErrInvalidSquad, i)
		}
		if utf8.RuneCountInString(name) > models.MaxAgentNameLen {
			return fmt.Errorf("%w: agent name %q is longer than %d characters", ErrInvalidSquad, name, models.MaxAgentNameLen)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate agent name %q", ErrInvalidSquad, name)
		}
		seen[name] = true
	}
	return nil
}
