// Package validate holds the per-field form rules applied before any request
// reaches the shop API. Each rule returns "" when the value is acceptable.
package validate

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fastygo/storefront/domain"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

func Email(email string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "Email address is required"
	case utf8.RuneCountInString(email) > 100:
		return "Email address is too long"
	case !emailPattern.MatchString(email):
		return "Please enter a valid email address"
	}
	return ""
}

func Password(password string) string {
	switch n := utf8.RuneCountInString(password); {
	case n < 6:
		return "Password must be at least 6 characters long"
	case n > 50:
		return "Password must be less than 50 characters"
	}
	return ""
}

func ConfirmPassword(password, confirm string) string {
	if confirm == "" {
		return "Please confirm your password"
	}
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}

// Phone accepts 10 to 15 digits.
func Phone(phone string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case len(phone) < 10:
		return "Phone number must be at least 10 digits"
	case len(phone) > 15:
		return "Phone number must be less than 15 digits"
	case !digitsPattern.MatchString(phone):
		return "Phone number can only contain digits"
	}
	return ""
}

// MobilePhone is the storefront signup rule: exactly ten digits.
func MobilePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) != 10 || !digitsPattern.MatchString(phone) {
		return "Please enter a valid 10-digit phone number"
	}
	return ""
}

// OTP checks a one-time code of exactly length digits.
func OTP(code string, length int) string {
	code = strings.TrimSpace(code)
	if len(code) != length || !digitsPattern.MatchString(code) {
		if length == 4 {
			return "Please enter a 4-digit OTP"
		}
		return "Please enter the complete 6-digit OTP"
	}
	return ""
}

func Name(name string) string {
	trimmed := strings.TrimSpace(name)
	switch {
	case utf8.RuneCountInString(trimmed) < 2:
		return "Name must be at least 2 characters long"
	case utf8.RuneCountInString(name) > 50:
		return "Name must be less than 50 characters"
	case !namePattern.MatchString(trimmed):
		return "Name can only contain letters and spaces"
	}
	return ""
}

func ShopName(name string) string {
	switch {
	case utf8.RuneCountInString(strings.TrimSpace(name)) < 2:
		return "Shop name must be at least 2 characters long"
	case utf8.RuneCountInString(name) > 100:
		return "Shop name must be less than 100 characters"
	}
	return ""
}

func Required(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return label + " is required"
	}
	return ""
}

// Errors maps a field name to its first failing rule.
type Errors map[string]string

// Check records msg for field unless the field already failed or msg is empty.
func (e Errors) Check(field, msg string) Errors {
	if msg == "" {
		return e
	}
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
	return e
}

// Err converts the collected failures into a domain INVALID error, or nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	fields := make(map[string]string, len(e))
	names := make([]string, 0, len(e))
	for k, v := range e {
		fields[k] = v
		names = append(names, k)
	}
	sort.Strings(names)
	message := "Please fix the errors in the form before submitting."
	if len(names) == 1 {
		message = e[names[0]]
	}
	return domain.FieldError(domain.ErrCodeInvalid, message, fields)
}
