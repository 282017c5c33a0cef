package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

// Config carries the settings shared by every store.
type Config struct {
	Duration time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
	Observer Observer
}

func (c Config) withDefaults() Config {
	if c.Duration <= 0 {
		c.Duration = domain.DefaultSessionDuration
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	return c
}

// Store owns the session keys of one namespace inside one profile's storage.
// Storage failures never escape: they are logged and reported as "no session".
type Store struct {
	kv       repository.KeyValueStore
	ns       domain.Namespace
	keys     keySet
	duration time.Duration
	now      func() time.Time
	logger   *zap.Logger
	observer Observer
}

func NewStore(kv repository.KeyValueStore, ns domain.Namespace, cfg Config) *Store {
	cfg = cfg.withDefaults()
	return &Store{
		kv:       kv,
		ns:       ns,
		keys:     keysFor(ns),
		duration: cfg.Duration,
		now:      cfg.Now,
		logger:   cfg.Logger.With(zap.String("namespace", ns.String())),
		observer: cfg.Observer,
	}
}

func (s *Store) Namespace() domain.Namespace {
	return s.ns
}

// SaveSession overwrites the namespace's session with a fresh one for user.
// Legacy mirrors the new payload lacks are removed in the same write.
func (s *Store) SaveSession(ctx context.Context, user domain.User) bool {
	if user == nil {
		s.logger.Warn("refusing to save session without user payload")
		return false
	}
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("encode session user failed", zap.Error(err))
		return false
	}

	now := s.now()
	rec := record{
		User:      raw,
		Timestamp: now.UnixMilli(),
		Expires:   now.Add(s.duration).UnixMilli(),
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("encode session record failed", zap.Error(err))
		return false
	}

	values := legacyValues(s.ns, user, raw)
	values[s.keys.session] = string(encoded)
	values[s.keys.data] = string(raw)
	values[s.keys.activity] = strconv.FormatInt(rec.Timestamp, 10)

	if err := s.kv.Replace(ctx, values, s.keys.staleLegacy(values)); err != nil {
		s.logger.Error("persist session failed", zap.Error(err))
		s.observer.StorageFailed(s.ns, "save")
		return false
	}
	s.observer.SessionSaved(s.ns)
	return true
}

// IsSessionValid reports whether a session exists and is neither expired nor idle.
// Invalid and malformed sessions are removed.
func (s *Store) IsSessionValid(ctx context.Context) bool {
	_, ok := s.load(ctx)
	return ok
}

// Session returns a validated snapshot of the stored session.
func (s *Store) Session(ctx context.Context) (*domain.Session, bool) {
	return s.load(ctx)
}

// GetCurrentUser returns the stored user payload, or nil when there is no valid session.
func (s *Store) GetCurrentUser(ctx context.Context) domain.User {
	if !s.IsSessionValid(ctx) {
		return nil
	}
	raw, err := s.kv.Get(ctx, s.keys.data)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Error("read session user failed", zap.Error(err))
			s.observer.StorageFailed(s.ns, "read")
		}
		return nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		s.logger.Warn("stored session user is malformed", zap.Error(err))
		return nil
	}
	return user
}

func (s *Store) IsLoggedIn(ctx context.Context) bool {
	return s.IsSessionValid(ctx) && s.GetCurrentUser(ctx) != nil
}

// ClearSession removes every key the namespace's session owns. Safe to repeat.
func (s *Store) ClearSession(ctx context.Context) {
	s.purge(ctx, ReasonCleared)
}

// UpdateActivity records now as the last interaction time. The stored
// timestamp never moves backwards.
func (s *Store) UpdateActivity(ctx context.Context) {
	if _, err := s.kv.Advance(ctx, s.keys.activity, s.now().UnixMilli()); err != nil {
		s.logger.Warn("update activity failed", zap.Error(err))
		s.observer.StorageFailed(s.ns, "touch")
	}
}

func (s *Store) load(ctx context.Context) (*domain.Session, bool) {
	raw, err := s.kv.Get(ctx, s.keys.session)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Error("read session failed", zap.Error(err))
			s.observer.StorageFailed(s.ns, "read")
		}
		return nil, false
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || !rec.valid() {
		s.logger.Warn("discarding malformed session", zap.Error(err))
		s.purge(ctx, ReasonMalformed)
		return nil, false
	}

	last, ok := s.readActivity(ctx)
	if !ok {
		last = rec.Timestamp
	}

	var user domain.User
	_ = json.Unmarshal(rec.User, &user)

	sess := &domain.Session{
		Namespace:      s.ns,
		User:           user,
		CreatedAt:      time.UnixMilli(rec.Timestamp),
		ExpiresAt:      time.UnixMilli(rec.Expires),
		LastActivityAt: time.UnixMilli(last),
	}

	// Stored times have millisecond precision.
	now := time.UnixMilli(s.now().UnixMilli())
	switch {
	case sess.IsExpired(now):
		s.purge(ctx, ReasonExpired)
		return nil, false
	case sess.IsIdle(now, s.duration):
		s.purge(ctx, ReasonIdle)
		return nil, false
	}
	return sess, true
}

func (s *Store) readActivity(ctx context.Context) (int64, bool) {
	raw, err := s.kv.Get(ctx, s.keys.activity)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn("read activity failed", zap.Error(err))
		}
		return 0, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return ms, true
}

func (s *Store) purge(ctx context.Context, reason string) {
	if err := s.kv.Delete(ctx, s.keys.all()...); err != nil {
		s.logger.Error("clear session failed", zap.String("reason", reason), zap.Error(err))
		s.observer.StorageFailed(s.ns, "clear")
		return
	}
	s.logger.Debug("session cleared", zap.String("reason", reason))
	s.observer.SessionCleared(s.ns, reason)
}
