package conversation

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
	"roundcheck/internal/notify"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

// Options carries engine policy taken from configuration.
type Options struct {
	Admins        []int64
	RetentionDays int
	StoreTimeout  time.Duration
	Workers       int
}

// Engine is the per-user conversation state machine. It routes inbound
// photo/text/action events to the audit lifecycle and drives outbound
// messages through the transport.
//
// Events are distributed to a fixed set of shard workers by user id, so two
// events from the same user are always handled in arrival order while
// different users proceed independently.
type Engine struct {
	svc          *audit.Service
	dispatcher   *notify.Dispatcher
	messenger    ports.Messenger
	admins       map[int64]struct{}
	retention    int
	storeTimeout time.Duration
	workers      int
	sessions     *sessions
}

func NewEngine(svc *audit.Service, dispatcher *notify.Dispatcher, messenger ports.Messenger, opts Options) *Engine {
	admins := make(map[int64]struct{}, len(opts.Admins))
	for _, id := range opts.Admins {
		admins[id] = struct{}{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	storeTimeout := opts.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}

	return &Engine{
		svc:          svc,
		dispatcher:   dispatcher,
		messenger:    messenger,
		admins:       admins,
		retention:    opts.RetentionDays,
		storeTimeout: storeTimeout,
		workers:      workers,
		sessions:     newSessions(),
	}
}

// Run consumes events until the source channel closes or ctx is cancelled.
func (e *Engine) Run(ctx context.Context, events <-chan ports.Event) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	queues := make([]chan ports.Event, e.workers)
	for i := range queues {
		queues[i] = make(chan ports.Event, 16)
	}

	var wg sync.WaitGroup
	for i := range queues {
		wg.Add(1)
		go func(queue <-chan ports.Event) {
			defer wg.Done()
			for event := range queue {
				e.Handle(ctx, event)
			}
		}(queues[i])
	}

	defer func() {
		for _, queue := range queues {
			close(queue)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			shard := userShard(event.UserChatID, e.workers)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case queues[shard] <- event:
			}
		}
	}
}

func userShard(userChatID int64, workers int) int {
	h := fnv.New32a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(userChatID >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return int(h.Sum32() % uint32(workers))
}

// Handle processes one inbound event to completion. Exported for tests and
// for single-event transports; per-user serialization is the caller's
// concern when bypassing Run.
func (e *Engine) Handle(ctx context.Context, event ports.Event) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "conversation"),
		slog.String("event_id", event.ID),
		slog.Int64("user", event.UserChatID),
		slog.String("kind", string(event.Kind)),
	)

	handleCtx, cancel := context.WithTimeout(logCtx, e.storeTimeout)
	defer cancel()

	switch event.Kind {
	case ports.EventAction:
		e.handleAction(handleCtx, event)
	case ports.EventPhoto:
		e.handlePhoto(handleCtx, event)
	case ports.EventText:
		e.handleText(handleCtx, event)
	default:
		logging.Warn(logCtx, "unknown event kind dropped")
	}
}

func (e *Engine) isAdmin(userChatID int64) bool {
	_, ok := e.admins[userChatID]
	return ok
}

// send delivers a text to the user, logging and swallowing failures.
func (e *Engine) send(ctx context.Context, userChatID int64, body string, buttons ...ports.Button) int64 {
	ref, err := e.messenger.SendText(ctx, ports.Recipient{ChatID: userChatID}, body, buttons...)
	if err != nil {
		logging.Warn(ctx, "send text failed", slog.Any("err", errs.Loggable(err)))
		return 0
	}
	return ref
}

func (e *Engine) sendPhoto(ctx context.Context, userChatID int64, photoRef, caption string, buttons ...ports.Button) int64 {
	ref, err := e.messenger.SendPhoto(ctx, ports.Recipient{ChatID: userChatID}, photoRef, caption, buttons...)
	if err != nil {
		logging.Warn(ctx, "send photo failed", slog.Any("err", errs.Loggable(err)))
		return 0
	}
	return ref
}

// deleteMessages removes transient messages, best effort.
func (e *Engine) deleteMessages(ctx context.Context, userChatID int64, refs []int64) {
	for _, ref := range refs {
		if ref == 0 {
			continue
		}
		if err := e.messenger.DeleteMessage(ctx, ports.Recipient{ChatID: userChatID}, ref); err != nil {
			logging.Warn(ctx, "delete message failed",
				slog.Int64("message_ref", ref),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}

// resetSession clears the user's session and tells them to start over.
// Used when a sub-state references an entity that no longer exists.
func (e *Engine) resetSession(ctx context.Context, userChatID int64, notice string) {
	e.sessions.clear(userChatID)
	e.send(ctx, userChatID, notice)
}
