package activity

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/usecase/session"
)

// Event is a user interaction that counts as activity.
type Event string

const (
	EventClick       Event = "click"
	EventKeypress    Event = "keypress"
	EventScroll      Event = "scroll"
	EventMouseMove   Event = "mousemove"
	EventPointerMove Event = "pointermove"
	EventNavigate    Event = "navigate"
)

// Known reports whether e is one of the tracked interaction events.
func (e Event) Known() bool {
	switch e {
	case EventClick, EventKeypress, EventScroll, EventMouseMove, EventPointerMove, EventNavigate:
		return true
	}
	return false
}

const (
	DefaultSweepInterval = 5 * time.Minute
	defaultQueueSize     = 16
)

type Config struct {
	SweepInterval time.Duration
	QueueSize     int
	// OnExpired runs after a sweep found the session invalid and cleared it.
	OnExpired func(ns domain.Namespace)
	// Scheduler is shared between trackers; a private one is created when nil.
	Scheduler *cron.Cron
	Logger    *zap.Logger
}

// Tracker keeps one session's activity timestamp fresh and expires it when it goes stale.
type Tracker struct {
	store     *session.Store
	interval  time.Duration
	onExpired func(ns domain.Namespace)
	logger    *zap.Logger

	scheduler    *cron.Cron
	ownScheduler bool

	events chan Event

	mu      sync.Mutex
	entryID cron.EntryID
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewTracker(store *session.Store, cfg Config) *Tracker {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	t := &Tracker{
		store:     store,
		interval:  cfg.SweepInterval,
		onExpired: cfg.OnExpired,
		logger:    cfg.Logger.With(zap.String("namespace", store.Namespace().String())),
		scheduler: cfg.Scheduler,
		events:    make(chan Event, cfg.QueueSize),
	}
	if t.scheduler == nil {
		t.scheduler = cron.New()
		t.ownScheduler = true
	}
	return t
}

// Init records activity immediately, starts consuming events and installs
// the periodic sweep. Calling it again replaces the previous loop and sweep.
func (t *Tracker) Init(ctx context.Context) {
	t.store.UpdateActivity(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(loopCtx, t.done)

	t.entryID = t.scheduler.Schedule(cron.Every(t.interval), cron.FuncJob(func() {
		t.Sweep(loopCtx)
	}))
	if t.ownScheduler {
		t.scheduler.Start()
	}
}

// Notify posts an interaction without blocking. It returns false when the
// event is unknown, the tracker is not running, or the queue is full.
func (t *Tracker) Notify(event Event) bool {
	if !event.Known() || !t.Running() {
		return false
	}
	select {
	case t.events <- event:
		return true
	default:
		return false
	}
}

// Sweep re-validates the session and clears it when invalid.
// It returns whether the session is still valid.
func (t *Tracker) Sweep(ctx context.Context) bool {
	if t.store.IsSessionValid(ctx) {
		return true
	}
	t.store.ClearSession(ctx)
	t.logger.Info("session expired")
	if t.onExpired != nil {
		t.onExpired(t.store.Namespace())
	}
	return false
}

// Stop cancels the sweep and the event loop.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	if t.ownScheduler {
		t.scheduler.Stop()
	}
}

func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Tracker) stopLocked() {
	if t.entryID != 0 {
		t.scheduler.Remove(t.entryID)
		t.entryID = 0
	}
	if t.cancel != nil {
		t.cancel()
		<-t.done
		t.cancel = nil
		t.done = nil
	}
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.events:
			t.store.UpdateActivity(ctx)
		}
	}
}
