// Package mcp exposes the inter-agent messaging tool: agents call send_message to type a message
// into another agent's pane.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ankittk/agentsquad/internal/otel"
	"github.com/ankittk/agentsquad/pkg/models"
)

// ToolSendMessage is the only registered tool today.
const ToolSendMessage = "send_message"

// Parameter names of send_message.
const (
	ParamAgentName = "agent_name"
	ParamMessage   = "message"
)

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrUnknownAgent = errors.New("unknown agent")
)

// ValidationError reports a missing or non-text tool parameter.
type ValidationError struct {
	Param string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: must be a non-empty string", e.Param)
}

// Panes is the pane view the toolkit needs. *tmux.Allocator implements it.
type Panes interface {
	GetAllPanes() []models.Pane
	SendKeys(ctx context.Context, paneID, text string) error
}

// MessageResult is returned by a successful send_message call.
type MessageResult struct {
	TargetAgent string    `json:"target_agent"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Success     bool      `json:"success"`
}

// Toolkit implements the agent-facing tools on top of a squad's panes. The pane view is
// re-read on every call, so panes created after construction are visible.
type Toolkit struct {
	Panes Panes
	Now   func() time.Time
}

// NewToolkit returns a Toolkit over panes.
func NewToolkit(panes Panes) *Toolkit {
	return &Toolkit{Panes: panes, Now: time.Now}
}

// ToolNames lists registered tools.
func (t *Toolkit) ToolNames() []string {
	return []string{ToolSendMessage}
}

// ExecuteTool dispatches a tool call by name with loosely typed params.
func (t *Toolkit) ExecuteTool(ctx context.Context, name string, params map[string]any) (any, error) {
	switch name {
	case ToolSendMessage:
		agent, err := stringParam(params, ParamAgentName)
		if err != nil {
			return nil, err
		}
		msg, err := stringParam(params, ParamMessage)
		if err != nil {
			return nil, err
		}
		return t.SendMessage(ctx, agent, msg)
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, strings.Join(t.ToolNames(), ", "))
}

// SendMessage types message into agentName's pane.
func (t *Toolkit) SendMessage(ctx context.Context, agentName, message string) (MessageResult, error) {
	if agentName == "" {
		return MessageResult{}, &ValidationError{Param: ParamAgentName}
	}
	if message == "" {
		return MessageResult{}, &ValidationError{Param: ParamMessage}
	}
	panes := t.Panes.GetAllPanes()
	var target *models.Pane
	known := make([]string, 0, len(panes))
	for i := range panes {
		known = append(known, panes[i].AgentName)
		if panes[i].AgentName == agentName {
			target = &panes[i]
		}
	}
	if target == nil {
		otel.RecordMessage(ctx, agentName, false)
		return MessageResult{}, fmt.Errorf("%w %q; available agents: %s", ErrUnknownAgent, agentName, strings.Join(known, ", "))
	}
	if err := t.Panes.SendKeys(ctx, target.ID, EscapeMessage(message)); err != nil {
		otel.RecordMessage(ctx, agentName, false)
		return MessageResult{}, fmt.Errorf("send to %s: %w", agentName, err)
	}
	otel.RecordMessage(ctx, agentName, true)
	return MessageResult{TargetAgent: agentName, Message: message, Timestamp: t.now(), Success: true}, nil
}

// EscapeMessage makes message safe to type into a shell-driven pane as a single line:
// single quotes become '\'' and newlines become the two characters \n.
func EscapeMessage(message string) string {
	s := strings.ReplaceAll(message, `'`, `'\''`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func (t *Toolkit) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func stringParam(params map[string]any, name string) (string, error) {
	v, ok := params[name]
	if !ok {
		return "", &ValidationError{Param: name}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &ValidationError{Param: name}
	}
	return s, nil
}
