package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asha@kala.in", ""},
		{"  asha@kala.in  ", ""},
		{"", "Email address is required"},
		{"asha", "Please enter a valid email address"},
		{"asha@kala", "Please enter a valid email address"},
		{"a sha@kala.in", "Please enter a valid email address"},
		{strings.Repeat("a", 95) + "@x.com", "Email address is too long"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Email(tt.in), tt.in)
	}
}

func TestPassword(t *testing.T) {
	assert.Equal(t, "Password must be at least 6 characters long", Password("12345"))
	assert.Empty(t, Password("123456"))
	assert.Empty(t, Password(strings.Repeat("x", 50)))
	assert.Equal(t, "Password must be less than 50 characters", Password(strings.Repeat("x", 51)))

	assert.Empty(t, ConfirmPassword("secret1", "secret1"))
	assert.Equal(t, "Passwords do not match", ConfirmPassword("secret1", "secret2"))
	assert.Equal(t, "Please confirm your password", ConfirmPassword("secret1", ""))
}

func TestPhone(t *testing.T) {
	assert.Empty(t, Phone("9876543210"))
	assert.Empty(t, Phone("919876543210"))
	assert.NotEmpty(t, Phone("98765"))
	assert.NotEmpty(t, Phone("98765432101234567"))
	assert.NotEmpty(t, Phone("98765-43210"))

	assert.Empty(t, MobilePhone("9876543210"))
	assert.NotEmpty(t, MobilePhone("919876543210"))
}

func TestOTP(t *testing.T) {
	assert.Empty(t, OTP("1234", 4))
	assert.Equal(t, "Please enter a 4-digit OTP", OTP("123", 4))
	assert.Equal(t, "Please enter a 4-digit OTP", OTP("12a4", 4))
	assert.Empty(t, OTP("123456", 6))
	assert.Equal(t, "Please enter the complete 6-digit OTP", OTP("1234", 6))
}

func TestNameAndShopName(t *testing.T) {
	assert.Empty(t, Name("Asha Rao"))
	assert.NotEmpty(t, Name("A"))
	assert.NotEmpty(t, Name("R2D2"))
	assert.NotEmpty(t, Name(strings.Repeat("a", 51)))

	assert.Empty(t, ShopName("Kala & Co."))
	assert.NotEmpty(t, ShopName(" "))
	assert.NotEmpty(t, ShopName(strings.Repeat("s", 101)))
}

func TestErrors(t *testing.T) {
	assert.NoError(t, Errors{}.Check("email", "").Err())

	errs := Errors{}.
		Check("email", Email("bad")).
		Check("password", Password("1")).
		Check("email", "second message is ignored")

	err := errs.Err()
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	dErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Please enter a valid email address", dErr.Fields["email"])
	assert.Len(t, dErr.Fields, 2)

	single, _ := domain.AsError(Errors{}.Check("otp", OTP("1", 4)).Err())
	assert.Equal(t, "Please enter a 4-digit OTP", single.Message)
}
