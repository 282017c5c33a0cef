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

type trackerKey struct {
	profile string
	ns      domain.Namespace
}

type PoolConfig struct {
	SweepInterval time.Duration
	QueueSize     int
	// OnExpired runs after a tracked session was force-expired by a sweep.
	OnExpired func(profileID string, ns domain.Namespace)
	Logger    *zap.Logger
}

// Pool keeps one tracker per live (profile, namespace) session. All trackers
// share a single cron scheduler.
type Pool struct {
	factory   *session.Factory
	scheduler *cron.Cron
	cfg       PoolConfig
	logger    *zap.Logger

	mu       sync.Mutex
	trackers map[trackerKey]*Tracker
	stopped  bool
}

func NewPool(factory *session.Factory, cfg PoolConfig) *Pool {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	p := &Pool{
		factory:   factory,
		scheduler: cron.New(),
		cfg:       cfg,
		logger:    cfg.Logger,
		trackers:  make(map[trackerKey]*Tracker),
	}
	p.scheduler.Start()
	return p
}

// Touch records an interaction for the profile's session in ns. A tracker is
// started the first time a valid session is seen; nothing is tracked otherwise,
// and a tracker whose session is gone is dropped.
func (p *Pool) Touch(ctx context.Context, profileID string, ns domain.Namespace, event Event) bool {
	if profileID == "" || !ns.Valid() {
		return false
	}
	key := trackerKey{profile: profileID, ns: ns}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return false
	}
	tracker, ok := p.trackers[key]
	p.mu.Unlock()

	// A cached tracker may outlive its session: logout in another tab or a
	// purge by the auth gate does not go through the pool.
	if !p.factory.For(profileID, ns).IsSessionValid(ctx) {
		if ok {
			p.Forget(profileID, ns)
		}
		return false
	}
	if ok {
		tracker.Notify(event)
		return true
	}
	p.Track(ctx, profileID, ns)
	return true
}

// Track starts (or restarts) the tracker for a freshly saved session.
func (p *Pool) Track(ctx context.Context, profileID string, ns domain.Namespace) *Tracker {
	key := trackerKey{profile: profileID, ns: ns}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	tracker, ok := p.trackers[key]
	if !ok {
		tracker = NewTracker(p.factory.For(profileID, ns), Config{
			SweepInterval: p.cfg.SweepInterval,
			QueueSize:     p.cfg.QueueSize,
			Scheduler:     p.scheduler,
			Logger:        p.logger.With(zap.String("profile", profileID)),
			OnExpired: func(ns domain.Namespace) {
				p.Forget(profileID, ns)
				if p.cfg.OnExpired != nil {
					p.cfg.OnExpired(profileID, ns)
				}
			},
		})
		p.trackers[key] = tracker
	}
	tracker.Init(ctx)
	return tracker
}

// Forget stops and drops the tracker, e.g. after logout.
func (p *Pool) Forget(profileID string, ns domain.Namespace) {
	key := trackerKey{profile: profileID, ns: ns}

	p.mu.Lock()
	tracker, ok := p.trackers[key]
	delete(p.trackers, key)
	p.mu.Unlock()

	if ok {
		tracker.Stop()
	}
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.trackers)
}

// Scheduled returns the number of sweep entries currently installed.
func (p *Pool) Scheduled() int {
	return len(p.scheduler.Entries())
}

// Stop halts every tracker and waits for running sweeps to finish.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	trackers := p.trackers
	p.trackers = make(map[trackerKey]*Tracker)
	p.mu.Unlock()

	for _, tracker := range trackers {
		tracker.Stop()
	}

	select {
	case <-p.scheduler.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
