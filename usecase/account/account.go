package account

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
	"github.com/fastygo/storefront/pkg/validate"
)

const (
	signupOTPLength = 6
	resetOTPLength  = 4
)

// Remote is the slice of the shop API the account flows need.
type Remote interface {
	Register(ctx context.Context, s shopapi.Signup) (string, error)
	VerifySignupOTP(ctx context.Context, s shopapi.Signup, otp string) (string, error)
	ResendOTP(ctx context.Context, email, name, purpose string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyResetOTP(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, email, password, confirm string) (string, error)
	RegisterAdmin(ctx context.Context, s shopapi.AdminSignup) (string, error)
}

// UseCase runs signup, OTP and password reset flows. Every input is
// validated before the API is contacted; API messages are returned verbatim.
type UseCase struct {
	remote Remote
	logger *zap.Logger
}

func New(remote Remote, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{remote: remote, logger: logger}
}

func (uc *UseCase) Register(ctx context.Context, s shopapi.Signup) (string, error) {
	s = normalizeSignup(s)
	if err := validateSignup(s); err != nil {
		return "", err
	}
	return uc.remote.Register(ctx, s)
}

func (uc *UseCase) VerifySignupOTP(ctx context.Context, s shopapi.Signup, otp string) (string, error) {
	s = normalizeSignup(s)
	errs := validate.Errors{}.
		Check("email", validate.Email(s.Email)).
		Check("otp", validate.OTP(otp, signupOTPLength))
	if err := errs.Err(); err != nil {
		return "", err
	}
	return uc.remote.VerifySignupOTP(ctx, s, strings.TrimSpace(otp))
}

// ResendOTP re-sends a code; purpose is "signup" (default) or "reset".
func (uc *UseCase) ResendOTP(ctx context.Context, email, name, purpose string) (string, error) {
	email = strings.TrimSpace(email)
	if err := (validate.Errors{}).Check("email", validate.Email(email)).Err(); err != nil {
		return "", err
	}
	if purpose != "reset" {
		purpose = "signup"
	}
	return uc.remote.ResendOTP(ctx, email, strings.TrimSpace(name), purpose)
}

func (uc *UseCase) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := (validate.Errors{}).Check("email", validate.Email(email)).Err(); err != nil {
		return "", err
	}
	return uc.remote.ForgotPassword(ctx, email)
}

func (uc *UseCase) VerifyResetOTP(ctx context.Context, email, otp string) (string, error) {
	email = strings.TrimSpace(email)
	errs := validate.Errors{}.
		Check("email", validate.Email(email)).
		Check("otp", validate.OTP(otp, resetOTPLength))
	if err := errs.Err(); err != nil {
		return "", err
	}
	return uc.remote.VerifyResetOTP(ctx, email, strings.TrimSpace(otp))
}

func (uc *UseCase) ResetPassword(ctx context.Context, email, password, confirm string) (string, error) {
	email = strings.TrimSpace(email)
	errs := validate.Errors{}.
		Check("email", validate.Email(email)).
		Check("new_password", validate.Password(password)).
		Check("confirm_password", validate.ConfirmPassword(password, confirm))
	if err := errs.Err(); err != nil {
		return "", err
	}
	return uc.remote.ResetPassword(ctx, email, password, confirm)
}

// RegisterAdmin creates a shop owner account together with its shop.
func (uc *UseCase) RegisterAdmin(ctx context.Context, s shopapi.AdminSignup) (string, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.ShopName = strings.TrimSpace(s.ShopName)

	errs := validate.Errors{}.
		Check("name", validate.Name(s.Name)).
		Check("phone", validate.Phone(s.Phone)).
		Check("email", validate.Email(s.Email)).
		Check("password", validate.Password(s.Password)).
		Check("shop_name", validate.ShopName(s.ShopName))
	if err := errs.Err(); err != nil {
		return "", err
	}
	msg, err := uc.remote.RegisterAdmin(ctx, s)
	if err != nil {
		return "", err
	}
	uc.logger.Info("shop registered", zap.String("shop_name", s.ShopName))
	return msg, nil
}

func normalizeSignup(s shopapi.Signup) shopapi.Signup {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = digitsOnly(s.Phone)
	return s
}

func validateSignup(s shopapi.Signup) error {
	return validate.Errors{}.
		Check("name", validate.Name(s.Name)).
		Check("email", validate.Email(s.Email)).
		Check("phone", validate.MobilePhone(s.Phone)).
		Check("password", validate.Password(s.Password)).
		Check("confirm_password", validate.ConfirmPassword(s.Password, s.ConfirmPassword)).
		Err()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
