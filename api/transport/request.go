package transport

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	OTP             string `json:"otp,omitempty"`
}

type AdminSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	ShopName string `json:"shop_name"`
}

type ResendOTPRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type OTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ActivityRequest reports browser interactions for a namespace.
type ActivityRequest struct {
	Namespace string `json:"namespace"`
	Event     string `json:"event"`
}
