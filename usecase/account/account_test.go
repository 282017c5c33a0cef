package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
)

type fakeRemote struct {
	calls  []string
	signup shopapi.Signup
	err    error
}

func (f *fakeRemote) Register(_ context.Context, s shopapi.Signup) (string, error) {
	f.calls = append(f.calls, "register")
	f.signup = s
	return "OTP sent", f.err
}

func (f *fakeRemote) VerifySignupOTP(_ context.Context, s shopapi.Signup, otp string) (string, error) {
	f.calls = append(f.calls, "verify:"+otp)
	return "verified", f.err
}

func (f *fakeRemote) ResendOTP(_ context.Context, email, name, purpose string) (string, error) {
	f.calls = append(f.calls, "resend:"+purpose)
	return "sent", f.err
}

func (f *fakeRemote) ForgotPassword(context.Context, string) (string, error) {
	f.calls = append(f.calls, "forgot")
	return "sent", f.err
}

func (f *fakeRemote) VerifyResetOTP(_ context.Context, _, otp string) (string, error) {
	f.calls = append(f.calls, "verify-reset:"+otp)
	return "ok", f.err
}

func (f *fakeRemote) ResetPassword(context.Context, string, string, string) (string, error) {
	f.calls = append(f.calls, "reset")
	return "done", f.err
}

func (f *fakeRemote) RegisterAdmin(context.Context, shopapi.AdminSignup) (string, error) {
	f.calls = append(f.calls, "register-admin")
	return "created", f.err
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	dErr, ok := domain.AsError(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrCodeInvalid, dErr.Code)
	return dErr.Fields
}

func TestRegisterNormalizesAndValidates(t *testing.T) {
	remote := &fakeRemote{}
	uc := New(remote, nil)

	msg, err := uc.Register(context.Background(), shopapi.Signup{
		Name: " Asha Rao ", Email: "asha@kala.in ", Phone: "98765-43210",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "OTP sent", msg)
	assert.Equal(t, "9876543210", remote.signup.Phone)
	assert.Equal(t, "Asha Rao", remote.signup.Name)
}

func TestRegisterCollectsEveryFieldError(t *testing.T) {
	remote := &fakeRemote{}
	uc := New(remote, nil)

	_, err := uc.Register(context.Background(), shopapi.Signup{
		Name: "A", Email: "nope", Phone: "123", Password: "abc", ConfirmPassword: "abd",
	})
	fields := fieldsOf(t, err)
	assert.Len(t, fields, 5)
	assert.Empty(t, remote.calls)
}

func TestOTPLengths(t *testing.T) {
	remote := &fakeRemote{}
	uc := New(remote, nil)
	ctx := context.Background()
	signup := shopapi.Signup{Email: "a@b.co"}

	_, err := uc.VerifySignupOTP(ctx, signup, "1234")
	assert.Contains(t, fieldsOf(t, err), "otp")

	_, err = uc.VerifySignupOTP(ctx, signup, "123456")
	require.NoError(t, err)

	_, err = uc.VerifyResetOTP(ctx, "a@b.co", "123456")
	assert.Contains(t, fieldsOf(t, err), "otp")

	_, err = uc.VerifyResetOTP(ctx, "a@b.co", " 1234 ")
	require.NoError(t, err)

	assert.Equal(t, []string{"verify:123456", "verify-reset:1234"}, remote.calls)
}

func TestPasswordReset(t *testing.T) {
	remote := &fakeRemote{}
	uc := New(remote, nil)
	ctx := context.Background()

	_, err := uc.ForgotPassword(ctx, "")
	assert.Contains(t, fieldsOf(t, err), "email")

	_, err = uc.ResetPassword(ctx, "a@b.co", "newpass", "other")
	assert.Equal(t, map[string]string{"confirm_password": "Passwords do not match"}, fieldsOf(t, err))

	_, err = uc.ForgotPassword(ctx, "a@b.co")
	require.NoError(t, err)
	_, err = uc.ResetPassword(ctx, "a@b.co", "newpass", "newpass")
	require.NoError(t, err)
	_, err = uc.ResendOTP(ctx, "a@b.co", "", "anything")
	require.NoError(t, err)

	assert.Equal(t, []string{"forgot", "reset", "resend:signup"}, remote.calls)
}

func TestRemoteErrorsPassThrough(t *testing.T) {
	rejected := domain.NewError(domain.ErrCodeRejected, "Email already registered")
	uc := New(&fakeRemote{err: rejected}, nil)

	_, err := uc.RegisterAdmin(context.Background(), shopapi.AdminSignup{
		Name: "Asha", Email: "a@b.co", Phone: "9876543210", Password: "secret1", ShopName: "Kala",
	})
	assert.ErrorIs(t, err, rejected)
}

func TestRegisterAdminValidation(t *testing.T) {
	remote := &fakeRemote{}
	_, err := New(remote, nil).RegisterAdmin(context.Background(), shopapi.AdminSignup{
		Name: "Asha", Email: "a@b.co", Phone: "98765", Password: "secret1", ShopName: "K",
	})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "shop_name")
	assert.Empty(t, remote.calls)
}
