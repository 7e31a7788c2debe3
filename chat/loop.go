package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aide/config"
	"aide/registry"
)

// Engine drives the turn loop for sessions against one backend. An
// Engine is stateless across turns and safe to share; per-conversation
// state lives in the Session.
type Engine struct {
	backend      Backend
	extractor    registry.Extractor
	dispatcher   *registry.Dispatcher
	systemPrompt string
	resultRole   string
	maxCalls     int
}

// EngineConfig assembles an Engine.
type EngineConfig struct {
	Backend    Backend
	Extractor  registry.Extractor
	Dispatcher *registry.Dispatcher
	// SystemPrompt is prepended to every backend query. Usually built
	// with BuildSystemPrompt.
	SystemPrompt string
	// ToolResultRole is the history role label the active backend
	// accepts for injected tool output ("tool", "system", "user").
	ToolResultRole string
	// MaxConsecutiveCalls bounds tool batches within one turn;
	// non-positive selects the default ceiling.
	MaxConsecutiveCalls int
}

// NewEngine creates a turn-loop engine.
func NewEngine(ec EngineConfig) *Engine {
	maxCalls := ec.MaxConsecutiveCalls
	if maxCalls <= 0 {
		maxCalls = config.DefaultMaxConsecutiveToolCalls
	}
	resultRole := ec.ToolResultRole
	if resultRole == "" {
		resultRole = "system"
	}
	return &Engine{
		backend:      ec.Backend,
		extractor:    ec.Extractor,
		dispatcher:   ec.Dispatcher,
		systemPrompt: ec.SystemPrompt,
		resultRole:   resultRole,
		maxCalls:     maxCalls,
	}
}

// Callbacks receive turn progress as it happens. Either field may be
// nil. OnStep fires for every emitted step including the streamed
// assistant text, so callers printing deltas should skip assistant
// steps there.
type Callbacks struct {
	OnDelta func(chunk string)
	OnStep  func(step Step)
}

// RunTurn executes one conversational turn: append the user input, query
// the backend, execute any extracted tool calls, feed results back, and
// repeat until the model stops requesting tools or the ceiling trips.
// The returned steps are the complete ordered record of the turn.
// Failures never surface as errors; they are error steps.
func (e *Engine) RunTurn(ctx context.Context, sess *Session, userInput string, cb Callbacks) []Step {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var steps []Step
	emit := func(role Role, content string) {
		step := Step{Role: role, Content: content}
		steps = append(steps, step)
		if cb.OnStep != nil {
			cb.OnStep(step)
		}
	}

	sess.History.Append("user", userInput)
	emit(RoleUser, userInput)

	consecutive := 0
	for consecutive < e.maxCalls {
		response, err := e.query(ctx, sess, cb.OnDelta)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Engine] Backend error in session %s: %v", sess.ID, err)
			}
			emit(RoleError, fmt.Sprintf("Backend error: %v", err))
			return steps
		}

		sess.History.Append("assistant", response)
		emit(RoleAssistant, response)

		// Extraction runs on the latest response only, never the full
		// history.
		calls := e.extractor.Extract(response)
		if len(calls) == 0 {
			return steps
		}

		emit(RoleToolExecution, executionNotice(calls))

		if aborted := e.runBatch(ctx, sess, calls, emit); aborted {
			// Completed results stay in history and steps; the turn
			// ends without re-querying the model over a half-finished
			// batch.
			return steps
		}

		consecutive++
	}

	note := fmt.Sprintf("System Note: Reached maximum consecutive tool calls (%d).", e.maxCalls)
	sess.History.Append("user", note)
	emit(RoleSystemInfo, note)
	return steps
}

// runBatch executes one batch of extracted calls sequentially, in
// extraction order: later calls may depend on earlier side effects, and
// history must see a deterministic append order. Reports true when the
// batch was aborted by context cancellation between calls.
func (e *Engine) runBatch(ctx context.Context, sess *Session, calls []registry.ExtractedCall, emit func(Role, string)) bool {
	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			emit(RoleError, fmt.Sprintf("Tool batch aborted after %d of %d calls: %v", i, len(calls), err))
			return true
		}

		result := e.dispatcher.Execute(ctx, call)
		sess.History.Append(e.resultRole, fmt.Sprintf("Tool execution result for '%s':\n\n%s", call.Tool, result))
		emit(RoleToolResult, result)
	}
	return false
}

// query sends the system prompt plus full history to the backend and
// accumulates the streamed response.
func (e *Engine) query(ctx context.Context, sess *Session, onDelta func(string)) (string, error) {
	messages := make([]Message, 0, sess.History.Len()+1)
	if e.systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: e.systemPrompt})
	}
	messages = append(messages, sess.History.Messages()...)

	var response strings.Builder
	start := time.Now()

	err := e.backend.Chat(ctx, messages, func(chunk string) error {
		response.WriteString(chunk)
		if onDelta != nil {
			onDelta(chunk)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Engine] Backend response after %v: %d chars", time.Since(start), response.Len())
	}
	return response.String(), nil
}

// executionNotice summarizes a batch for progress display, clamping
// each argument to 30 characters.
func executionNotice(calls []registry.ExtractedCall) string {
	details := make([]string, 0, len(calls))
	for _, c := range calls {
		arg := c.Raw
		if r := []rune(arg); len(r) > 30 {
			arg = string(r[:30])
		}
		details = append(details, fmt.Sprintf("%s(%s...)", c.Tool, arg))
	}
	return "Executing Tools: " + strings.Join(details, ", ")
}
