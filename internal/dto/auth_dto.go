package dto

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Role     string `json:"role" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type ActivateOTPRequest struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type ChangePasswordRequest struct {
	LastPassword string `json:"last_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type RedeemPasswordResetRequest struct {
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MessagesResponse struct {
	Messages []string `json:"messages"`
}

type ErrorResponse struct {
	Error   bool     `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Cache     string `json:"cache"`
}
