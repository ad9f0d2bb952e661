package models

// AuthType selects whether an OTP request logs in an existing user or
// registers a new one.
type AuthType string

const (
	AuthTypeLogin  AuthType = "login"
	AuthTypeSignUp AuthType = "signUp"
)

type GenerateEmailRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	AuthType AuthType `json:"otpAuthenticationType" validate:"required,oneof=login signUp"`
}

type GenerateSMSRequest struct {
	PhoneNumber string   `json:"phone_number" validate:"required,e164"`
	AuthType    AuthType `json:"otpAuthenticationType" validate:"required,oneof=login signUp"`
}

type VerifyRequest struct {
	OTP   string `json:"otp" validate:"required,numeric"`
	Token string `json:"otpToken" validate:"required,uuid"`
}

type GenerateResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	OTPToken string `json:"otpToken"`
}

// LoginResponse is returned after a successful verification.
type LoginResponse struct {
	Auth        bool                   `json:"auth"`
	Token       string                 `json:"token"`
	ExpiresIn   int64                  `json:"expiresIn"`
	UserDetails map[string]interface{} `json:"userDetails"`
	Role        string                 `json:"role"`
	Tenant      map[string]interface{} `json:"tenant"`
	UserSetting map[string]interface{} `json:"userSetting"`
	ProjectID   string                 `json:"projectId"`
}
