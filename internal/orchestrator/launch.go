package orchestrator

import (
	"context"

	"github.com/ankittk/agentsquad/pkg/models"
)

// LaunchStrategy starts an agent's conversational client inside its pane and reports the
// resulting state.
type LaunchStrategy interface {
	Launch(ctx context.Context, agent models.Agent, pane models.Pane) (models.AgentState, error)
}

// LaunchFunc adapts a function to LaunchStrategy.
type LaunchFunc func(ctx context.Context, agent models.Agent, pane models.Pane) (models.AgentState, error)

func (f LaunchFunc) Launch(ctx context.Context, agent models.Agent, pane models.Pane) (models.AgentState, error) {
	return f(ctx, agent, pane)
}

// NoLaunch leaves every pane at its shell and marks the agent stopped. It is the default
// strategy: panes are laid out but no client is started in them.
var NoLaunch LaunchStrategy = LaunchFunc(func(context.Context, models.Agent, models.Pane) (models.AgentState, error) {
	return models.StateStopped, nil
})
