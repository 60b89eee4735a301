// Package assistant runs the conversational loop with the backend's AI
// assistant. A suggested shell command is held until the operator confirms
// or cancels it, and is never executed otherwise.
package assistant

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/adamkadaban/netinspector-tui/internal/api"
	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/logging"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

// Backend is the subset of the gateway the gate calls.
type Backend interface {
	Chat(ctx context.Context, message string) (api.ChatResponse, error)
	ExecuteCommand(ctx context.Context, command string) (api.ExecuteResponse, error)
}

// Reply is a classified chat response: ReplyOnly or ReplyWithCommand.
type Reply interface {
	Message() string
	reply()
}

// ReplyOnly carries assistant text with nothing to execute.
type ReplyOnly struct {
	Text string
}

// ReplyWithCommand carries assistant text and a command awaiting confirmation.
type ReplyWithCommand struct {
	Text    string
	Command string
}

func (r ReplyOnly) Message() string { return r.Text }
func (ReplyOnly) reply()            {}

func (r ReplyWithCommand) Message() string { return r.Text }
func (ReplyWithCommand) reply()            {}

// Classify turns a raw chat response into a Reply. A blank command counts as
// no command.
func Classify(resp api.ChatResponse) Reply {
	if resp.Command != nil && strings.TrimSpace(*resp.Command) != "" {
		return ReplyWithCommand{Text: resp.Response, Command: *resp.Command}
	}
	return ReplyOnly{Text: resp.Response}
}

// Options configure a Gate.
type Options struct {
	Logger *zap.Logger
}

// Gate is the command confirmation state machine. It is safe for concurrent use.
type Gate struct {
	backend  Backend
	store    *state.Store
	log      *zap.Logger
	terminal *state.Log

	mu        sync.Mutex
	state     state.GateState
	messages  []state.ChatMessage
	pending   string
	executing bool
}

var _ controller.CommandGate = (*Gate)(nil)

// New returns an idle gate with an empty transcript.
func New(store *state.Store, backend Backend, opts Options) *Gate {
	return &Gate{
		backend:  backend,
		store:    store,
		log:      logging.OrNop(opts.Logger).Named("assistant"),
		terminal: state.NewLog(),
		state:    state.GateIdle,
	}
}

func (g *Gate) Snapshot() state.ChatSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return state.ChatSnapshot{
		State:          g.state,
		Messages:       append([]state.ChatMessage(nil), g.messages...),
		PendingCommand: g.pending,
		Executing:      g.executing,
		Terminal:       g.terminal.Entries(),
	}
}

// Send posts text to the assistant. Whitespace-only text is ignored. Only the
// raw text is sent; the transcript stays local.
func (g *Gate) Send(ctx context.Context, text string) error {
	_, err := g.Ask(ctx, text)
	return err
}

// Ask is Send returning the classified reply. The reply is nil when text was
// blank or the call failed.
func (g *Gate) Ask(ctx context.Context, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	g.mu.Lock()
	if g.state != state.GateIdle {
		g.mu.Unlock()
		return nil, controller.ErrBusy
	}
	g.messages = append(g.messages, state.ChatMessage{Role: state.RoleUser, Content: text})
	g.state = state.GateAwaitingReply
	g.mu.Unlock()
	g.store.Changed()

	resp, err := g.backend.Chat(ctx, text)
	if err != nil {
		g.mu.Lock()
		g.state = state.GateIdle
		g.mu.Unlock()
		g.log.Debug("chat failed", zap.Error(err))
		g.store.Notify(state.NoticeError, "Failed to send message")
		g.store.Changed()
		return nil, err
	}

	reply := Classify(resp)
	g.mu.Lock()
	g.messages = append(g.messages, state.ChatMessage{Role: state.RoleAssistant, Content: reply.Message()})
	switch r := reply.(type) {
	case ReplyWithCommand:
		g.pending = r.Command
		g.state = state.GateAwaitingConfirmation
	default:
		g.state = state.GateIdle
	}
	g.mu.Unlock()
	g.store.Changed()
	return reply, nil
}

// Confirm executes the pending command verbatim. The pending command is
// cleared whatever the outcome and is never re-offered.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	if g.state != state.GateAwaitingConfirmation || g.executing {
		g.mu.Unlock()
		return controller.ErrInvalidState
	}
	command := g.pending
	g.executing = true
	g.mu.Unlock()
	g.store.Changed()

	resp, err := g.backend.ExecuteCommand(ctx, command)

	g.mu.Lock()
	g.executing = false
	g.pending = ""
	g.state = state.GateIdle
	g.mu.Unlock()

	if err != nil {
		g.log.Debug("execute command failed", zap.String("command", command), zap.Error(err))
		g.store.Notify(state.NoticeError, "Failed to execute command")
		g.store.Changed()
		return err
	}
	g.terminal.Append(state.SeverityInfo, "> Executing command: "+command)
	g.terminal.Append(state.SeverityInfo, resp.Output)
	g.store.Notify(state.NoticeSuccess, "Command executed successfully")
	g.store.Changed()
	return nil
}

// Cancel discards the pending command without contacting the backend.
func (g *Gate) Cancel() error {
	g.mu.Lock()
	if g.state != state.GateAwaitingConfirmation || g.executing {
		g.mu.Unlock()
		return controller.ErrInvalidState
	}
	g.pending = ""
	g.state = state.GateIdle
	g.mu.Unlock()
	g.store.Changed()
	return nil
}
