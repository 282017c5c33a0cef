package session

import (
	"encoding/json"

	"github.com/fastygo/storefront/domain"
)

type keySet struct {
	session  string
	data     string
	activity string
	legacy   []string
}

func keysFor(ns domain.Namespace) keySet {
	ks := keySet{
		session:  ns.String() + "_session",
		data:     ns.String() + "_data",
		activity: ns.String() + "_last_activity",
	}
	switch ns {
	case domain.NamespaceAdmin:
		ks.legacy = []string{"admin", "admin_id", "shop_id", "admin_role"}
	default:
		ks.legacy = []string{"user_id", "user_name", "user_role"}
	}
	return ks
}

// all lists every key a session owns in ns.
func (ks keySet) all() []string {
	keys := make([]string, 0, 3+len(ks.legacy))
	keys = append(keys, ks.session, ks.data, ks.activity)
	return append(keys, ks.legacy...)
}

// staleLegacy lists the legacy keys values does not rewrite.
func (ks keySet) staleLegacy(values map[string]string) []string {
	var stale []string
	for _, k := range ks.legacy {
		if _, ok := values[k]; !ok {
			stale = append(stale, k)
		}
	}
	return stale
}

// legacyValues mirrors user fields older pages still read directly.
// Fields missing from the payload are skipped.
func legacyValues(ns domain.Namespace, user domain.User, raw []byte) map[string]string {
	out := make(map[string]string, 4)
	put := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}

	switch ns {
	case domain.NamespaceAdmin:
		out["admin"] = string(raw)
		put("admin_id", user.String("id"))
		put("shop_id", user.ShopID())
		out["admin_role"] = orDefault(user.Role(), "admin")
	default:
		put("user_id", user.String("user_id", "id"))
		put("user_name", user.String("user_name", "name"))
		out["user_role"] = orDefault(user.Role(), "user")
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// record is the persisted <ns>_session value. Times are epoch milliseconds.
type record struct {
	User      json.RawMessage `json:"user"`
	Timestamp int64           `json:"timestamp"`
	Expires   int64           `json:"expires"`
}

func (r record) valid() bool {
	if r.Timestamp <= 0 || r.Expires <= 0 {
		return false
	}
	var payload map[string]any
	return json.Unmarshal(r.User, &payload) == nil && payload != nil
}
