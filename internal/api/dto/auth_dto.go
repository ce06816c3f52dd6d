package dto

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"rememberMe" form:"rememberMe"`
	Redirect   string `json:"redirect" form:"redirect"`
}

// SignupRequest is the registration form.
type SignupRequest struct {
	Name          string `json:"name" form:"name"`
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
	ContactNumber string `json:"contact_number" form:"contact_number"`
}

// VerifyOTPRequest submits a one-time code. Flow is "signup" (default) or "reset".
type VerifyOTPRequest struct {
	Email string `json:"email" form:"email"`
	OTP   string `json:"otp" form:"otp"`
	Flow  string `json:"flow" form:"flow"`
}

// EmailRequest carries just an email (forgot password, resend OTP).
type EmailRequest struct {
	Email string `json:"email" form:"email"`
}

// ResetPasswordRequest sets a new password with a verified code.
type ResetPasswordRequest struct {
	Email       string `json:"email" form:"email"`
	OTP         string `json:"otp" form:"otp"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// ProfileSetupRequest is the business profile form. DeliveryAreas is comma separated.
type ProfileSetupRequest struct {
	BusinessName          string `json:"business_name" form:"business_name"`
	DeliveryCharge        string `json:"delivery_charge" form:"delivery_charge"`
	FreeDeliveryThreshold string `json:"free_delivery_threshold" form:"free_delivery_threshold"`
	DeliveryAreas         string `json:"delivery_areas" form:"delivery_areas"`
	APIKey                string `json:"api_key" form:"api_key"`
}
