package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// DeletionScheduler deletes messages after a fixed delay, detached from the
// handler that scheduled them
type DeletionScheduler struct {
	gateway repo.Gateway
	delay   time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	timers map[uint64]*time.Timer
	nextID uint64
	wg     sync.WaitGroup
}

// NewDeletionScheduler creates a new deletion scheduler
func NewDeletionScheduler(gateway repo.Gateway, delay time.Duration, log *zap.Logger) *DeletionScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeletionScheduler{
		gateway: gateway,
		delay:   delay,
		log:     log.Named("scheduler"),
		timers:  make(map[uint64]*time.Timer),
	}
}

// Start starts the scheduler. Deletions run with a context derived from ctx.
func (s *DeletionScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.log.Info("started", zap.Duration("delay", s.delay))
}

// Stop drops pending deletions and waits for running ones
func (s *DeletionScheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	pending := len(s.timers)
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
		s.wg.Done()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("stopped", zap.Int("dropped", pending))
}

// Pending returns the number of deletions not yet started
func (s *DeletionScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Schedule deletes the message after the delay. The returned func cancels
// the deletion if it has not started yet.
func (s *DeletionScheduler) Schedule(chatID domain.ChatID, messageID int) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil || s.ctx.Err() != nil {
		s.log.Warn("scheduler not running, deletion dropped",
			zap.Int64("chat_id", int64(chatID)),
			zap.Int("message_id", messageID))
		return func() {}
	}

	id := s.nextID
	s.nextID++
	s.wg.Add(1)
	s.timers[id] = time.AfterFunc(s.delay, func() {
		s.fire(id, chatID, messageID)
	})

	return func() { s.drop(id) }
}

// drop cancels a pending deletion. Whoever removes the timer from the map
// owns its WaitGroup slot.
func (s *DeletionScheduler) drop(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
		s.wg.Done()
	}
}

func (s *DeletionScheduler) fire(id uint64, chatID domain.ChatID, messageID int) {
	s.mu.Lock()
	if _, ok := s.timers[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	ctx := s.ctx
	s.mu.Unlock()
	defer s.wg.Done()

	log := s.log.With(zap.Int64("chat_id", int64(chatID)), zap.Int("message_id", messageID))
	err := s.gateway.DeleteMessage(ctx, chatID, messageID)
	switch {
	case err == nil:
		log.Debug("deleted message")
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrPermission):
		log.Info("failed to delete message (it's probably gone already)", zap.Error(err))
	default:
		log.Warn("failed to delete message", zap.Error(err))
	}
}
