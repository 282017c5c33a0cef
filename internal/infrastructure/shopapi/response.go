package shopapi

import (
	"strings"

	"github.com/fastygo/storefront/domain"
)

// Response is the envelope every shop API endpoint answers with. Auth routes
// signal success with status="success", shop routes with success=true.
type Response struct {
	Status     string            `json:"status"`
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	User       domain.User       `json:"user"`
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Orders     []domain.Order    `json:"orders"`
	Blogs      []domain.Blog     `json:"blogs"`
}

func (r *Response) OK() bool {
	return r != nil && (strings.EqualFold(r.Status, "success") || r.Success)
}

func (r *Response) rejection() error {
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "Request failed"
	}
	err := domain.NewError(domain.ErrCodeRejected, msg)
	err.Fields = fieldsFor(msg)
	return err
}

var fieldKeywords = []struct {
	keyword string
	field   string
}{
	{"otp", "otp"},
	{"email", "email"},
	{"phone", "phone"},
	{"password", "password"},
	{"shop", "shop_name"},
	{"name", "name"},
}

// fieldsFor guesses which form field an API message is about.
func fieldsFor(message string) map[string]string {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "invalid credentials") {
		return map[string]string{
			"email":    "Invalid email or password",
			"password": "Invalid email or password",
		}
	}
	for _, kw := range fieldKeywords {
		if strings.Contains(lower, kw.keyword) {
			return map[string]string{kw.field: message}
		}
	}
	return nil
}
