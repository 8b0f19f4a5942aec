package tool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router delivers tool calls to registered handlers, at most once per call id.
//
// Call ids stay in the seen set until Reset, so a call that shows up again in
// a later conversation snapshot is never dispatched twice. Handlers are looked
// up at dispatch time; registering a handler late does not replay calls that
// already went by.
type Router struct {
	mu       sync.Mutex
	handlers map[string]Handler
	seen     map[string]struct{}
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{
		handlers: make(map[string]Handler),
		seen:     make(map[string]struct{}),
		logger:   logger,
	}
}

// Register binds h to name, replacing any earlier handler for that name.
func (r *Router) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Dispatch starts a handler for every call whose id has not been seen yet and
// returns the ids it marked as seen, in order. Calls without a registered
// handler are marked seen and dropped.
func (r *Router) Dispatch(ctx context.Context, calls []Call) []string {
	var marked []string
	for _, call := range calls {
		h, ok := r.claim(call)
		if !ok {
			continue
		}
		marked = append(marked, call.ID)

		if h == nil {
			r.logger.Debug("no handler for tool call", slog.String("id", call.ID), slog.String("name", call.Function.Name))
			continue
		}

		args, err := ParseArguments(call.Function.Arguments)
		if err != nil {
			r.logger.Warn("failed to parse tool arguments", slog.String("id", call.ID), slog.Any("err", err))
			args = map[string]string{}
		}

		r.run(context.WithoutCancel(ctx), call, h, args)
	}
	return marked
}

// claim marks the call as seen and returns its handler. ok is false when the
// id was already seen.
func (r *Router) claim(call Call) (h Handler, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.seen[call.ID]; dup {
		return nil, false
	}
	r.seen[call.ID] = struct{}{}

	return r.handlers[call.Function.Name], true
}

func (r *Router) run(ctx context.Context, call Call, h Handler, args map[string]string) {
	logger := r.logger.With(slog.String("id", call.ID), slog.String("name", call.Function.Name))

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer func() {
			if p := recover(); p != nil {
				logger.Error("tool handler panicked", slog.Any("err", fmt.Errorf("panic: %v", p)))
			}
		}()

		if err := h(ctx, args); err != nil {
			logger.Error("tool handler failed", slog.Any("err", err))
			return
		}
		logger.Debug("tool handler done")
	}()
}

// Seen reports whether the call id has been dispatched during the current call.
func (r *Router) Seen(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[id]
	return ok
}

// Reset forgets every seen call id. In-flight handlers keep running.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = make(map[string]struct{})
}

// Wait blocks until all started handlers have returned.
func (r *Router) Wait() {
	r.inflight.Wait()
}
