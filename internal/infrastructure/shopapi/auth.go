package shopapi

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

// Signup carries the storefront registration form.
type Signup struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

func (s Signup) form() Form {
	return Form{
		"name":             s.Name,
		"email":            s.Email,
		"phone":            s.Phone,
		"password":         s.Password,
		"confirm_password": s.ConfirmPassword,
		"agreed_terms":     "1",
	}
}

// AdminSignup carries the shop owner registration form.
type AdminSignup struct {
	Name     string
	Email    string
	Phone    string
	Password string
	ShopName string
}

// LoginUser authenticates a storefront customer.
func (c *Client) LoginUser(ctx context.Context, email, password string) (domain.User, error) {
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "login.php", Form{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return userOrFallback(resp.User, email), nil
}

// LoginAdmin authenticates a shop owner. The returned user carries shop_id.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (domain.User, error) {
	resp, err := c.post(ctx, c.cfg.AdminBaseURL, "login_admin.php", Form{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return userOrFallback(resp.User, email), nil
}

// Register starts signup; the API mails a one-time code.
func (c *Client) Register(ctx context.Context, s Signup) (string, error) {
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "register.php", s.form())
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) VerifySignupOTP(ctx context.Context, s Signup, otp string) (string, error) {
	form := s.form()
	form["otp"] = otp
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "verify_otp.php", form)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResendOTP asks for a fresh code; purpose is "signup" or "reset".
func (c *Client) ResendOTP(ctx context.Context, email, name, purpose string) (string, error) {
	form := Form{"email": email, "purpose": purpose}
	if name != "" {
		form["name"] = name
	}
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "resend_otp.php", form)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "forgot_password.php", Form{"email": email})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) (string, error) {
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "verify_forgot_password_otp.php", Form{"email": email, "otp": otp})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, email, password, confirm string) (string, error) {
	resp, err := c.post(ctx, c.cfg.AuthBaseURL, "reset_password.php", Form{
		"email":            email,
		"new_password":     password,
		"confirm_password": confirm,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) RegisterAdmin(ctx context.Context, s AdminSignup) (string, error) {
	resp, err := c.post(ctx, c.cfg.AdminBaseURL, "register_admin.php", Form{
		"name":      s.Name,
		"email":     s.Email,
		"phone":     s.Phone,
		"password":  s.Password,
		"shop_name": s.ShopName,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Older login routes answer without a user object; the email is all we know then.
func userOrFallback(user domain.User, email string) domain.User {
	if len(user) > 0 {
		return user
	}
	return domain.User{"email": email}
}
