package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/data"
	"github.com/colorcodebot/colorcodebot/internal/service"
)

const (
	pollTimeoutSeconds = 30
	seenUpdateTTL      = 5 * time.Minute
)

// allowedUpdates are the update kinds the bot handles
var allowedUpdates = []string{"message", "callback_query", "inline_query"}

// UpdateSource delivers transport updates; *telego.Bot implements it
type UpdateSource interface {
	UpdatesViaLongPolling(ctx context.Context, params *telego.GetUpdatesParams, options ...telego.LongPollingOption) (<-chan telego.Update, error)
}

// Dispatcher handles one inbound event
type Dispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}

// TelegramServer runs the long-polling event loop
type TelegramServer struct {
	source     UpdateSource
	dispatcher Dispatcher
	scheduler  *service.DeletionScheduler
	workers    int
	log        *zap.Logger

	// Update deduplication cache
	seenMu sync.Mutex
	seen   map[int]time.Time // updateID -> timestamp
}

// NewTelegramServer creates a new Telegram server. scheduler may be nil.
func NewTelegramServer(
	source UpdateSource,
	dispatcher Dispatcher,
	scheduler *service.DeletionScheduler,
	workers int,
	log *zap.Logger,
) *TelegramServer {
	if log == nil {
		log = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &TelegramServer{
		source:     source,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		workers:    workers,
		log:        log.Named("server"),
		seen:       make(map[int]time.Time),
	}
}

// Run polls for updates until ctx is cancelled, handling at most workers
// events at a time. In-flight events are drained before Run returns.
func (s *TelegramServer) Run(ctx context.Context) error {
	updates, err := s.source.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        pollTimeoutSeconds,
		AllowedUpdates: allowedUpdates,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	if s.scheduler != nil {
		s.scheduler.Start(ctx)
		defer s.scheduler.Stop()
	}

	s.log.Info("polling for updates", zap.Int("workers", s.workers))

	// Handlers finish their work on shutdown
	handlerCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for update := range updates {
		ev, ok := data.EventFromUpdate(update)
		if !ok {
			s.log.Debug("ignoring update", zap.Int("update_id", update.UpdateID))
			continue
		}
		if s.isSeen(ev.UpdateID) {
			s.log.Info("duplicate update ignored", zap.Int("update_id", ev.UpdateID))
			continue
		}
		s.markSeen(ev.UpdateID)

		g.Go(func() error {
			s.handle(handlerCtx, ev)
			return nil
		})
	}

	err = g.Wait()
	s.log.Info("stopped polling")
	return err
}

// handle dispatches one event. Failures and panics stay with the event.
func (s *TelegramServer) handle(ctx context.Context, ev domain.Event) {
	log := s.log.With(zap.Int("update_id", ev.UpdateID), zap.Stringer("kind", ev.Kind))
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	start := time.Now()
	if err := s.dispatcher.Dispatch(ctx, ev); err != nil {
		log.Error("handle event error", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	log.Debug("handled event", zap.Duration("elapsed", time.Since(start)))
}

// isSeen checks if an update has been processed
func (s *TelegramServer) isSeen(updateID int) bool {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	_, exists := s.seen[updateID]
	return exists
}

// markSeen marks an update as processed and drops records older than
// seenUpdateTTL
func (s *TelegramServer) markSeen(updateID int) {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	now := time.Now()
	s.seen[updateID] = now

	cutoff := now.Add(-seenUpdateTTL)
	for id, ts := range s.seen {
		if ts.Before(cutoff) {
			delete(s.seen, id)
		}
	}
}
