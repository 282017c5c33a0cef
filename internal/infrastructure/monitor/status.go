package monitor

import "time"

type Status struct {
	Storage   bool      `json:"storage"`
	Driver    string    `json:"driver"`
	ShopAPI   bool      `json:"shop_api"`
	LastCheck time.Time `json:"last_check"`
}

// Healthy reports whether sessions can be persisted. The remote API being
// down degrades logins but not the service itself.
func (s Status) Healthy() bool {
	return s.Storage
}
