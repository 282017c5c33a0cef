package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// User is the opaque identity payload returned by the remote API on login.
// The session layer stores it verbatim; accessors read the well-known fields.
//
// Stored users go through JSON, so a User read back from a session holds
// numbers as float64 even when saved with Go ints. Compare payloads as JSON
// (assert.JSONEq) or through the accessors, not with reflect.DeepEqual.
type User map[string]any

// String returns the first non-empty scalar among keys, rendered as text.
func (u User) String(keys ...string) string {
	for _, key := range keys {
		v, ok := u[key]
		if !ok || v == nil {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func (u User) ID() string {
	return u.String("id", "user_id")
}

func (u User) Name() string {
	return u.String("name", "user_name", "shop_name")
}

func (u User) Email() string {
	return u.String("email")
}

func (u User) Role() string {
	return u.String("role")
}

// ShopID is the tenant identifier admin dashboards are scoped by.
func (u User) ShopID() string {
	return u.String("shop_id")
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(val)
	default:
		return ""
	}
}
