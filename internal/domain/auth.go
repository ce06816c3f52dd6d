package domain

// Role identifies the account type carried by a session.
type Role string

const (
	// RoleRetailer is the only role allowed into the dashboard.
	RoleRetailer Role = "retailer"
)

// Session is the authenticated state persisted in cookies and mirrored in memory.
// A session is usable only when every field is present.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	Name         string `json:"name"`
}

// Complete reports whether all five session fields are populated.
func (s Session) Complete() bool {
	return s.AccessToken != "" &&
		s.RefreshToken != "" &&
		s.Role != "" &&
		s.Email != "" &&
		s.Name != ""
}

// PendingSetup holds tokens issued by OTP verification that may only be used
// to complete the retailer profile setup.
type PendingSetup struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Name         string
}

// Valid reports whether the pending setup carries a usable token.
func (p PendingSetup) Valid() bool {
	return p.AccessToken != ""
}

// AuthUser is the user block returned with issued tokens.
type AuthUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	AccountType string `json:"account_type,omitempty"`
}

// AuthTokens is the payload returned by login and OTP verification.
type AuthTokens struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	User    AuthUser `json:"user"`
}

// SignupResult is returned by signup and resend-otp.
type SignupResult struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	OTP         string  `json:"otp"`
	AccountType *string `json:"account_type"`
}
