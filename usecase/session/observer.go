package session

import "github.com/fastygo/storefront/domain"

// Reasons reported to Observer.SessionCleared.
const (
	ReasonCleared   = "cleared"
	ReasonExpired   = "expired"
	ReasonIdle      = "idle"
	ReasonMalformed = "malformed"
)

// Observer receives session lifecycle events, typically for metrics.
type Observer interface {
	SessionSaved(ns domain.Namespace)
	SessionCleared(ns domain.Namespace, reason string)
	StorageFailed(ns domain.Namespace, op string)
}

type nopObserver struct{}

func (nopObserver) SessionSaved(domain.Namespace)           {}
func (nopObserver) SessionCleared(domain.Namespace, string) {}
func (nopObserver) StorageFailed(domain.Namespace, string)  {}
