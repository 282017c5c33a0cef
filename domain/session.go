package domain

import "time"

// Namespace partitions session storage between the two actors sharing one browser profile.
type Namespace string

const (
	NamespaceAdmin Namespace = "admin"
	NamespaceUser  Namespace = "user"
)

// DefaultSessionDuration is both the absolute lifetime and the inactivity window of a session.
const DefaultSessionDuration = 7 * 24 * time.Hour

// Valid reports whether ns is one of the known actor namespaces.
func (ns Namespace) Valid() bool {
	return ns == NamespaceAdmin || ns == NamespaceUser
}

func (ns Namespace) String() string {
	return string(ns)
}

// Session represents the logged-in state persisted in a profile's storage.
type Session struct {
	Namespace      Namespace `json:"namespace"`
	User           User      `json:"user"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return reference.After(s.ExpiresAt)
}

// IsIdle reports whether more than window has passed since the last recorded activity.
func (s *Session) IsIdle(reference time.Time, window time.Duration) bool {
	if s == nil {
		return true
	}
	last := s.LastActivityAt
	if last.IsZero() {
		last = s.CreatedAt
	}
	return reference.Sub(last) > window
}

// IsValid evaluates expiry and inactivity against the same instant.
func (s *Session) IsValid(reference time.Time, window time.Duration) bool {
	if s == nil {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.IsExpired(reference) && !s.IsIdle(reference, window)
}
