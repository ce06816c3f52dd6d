package apiclient

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/retailer-dashboard/internal/cache"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// Cache tag types.
const (
	TagAuth    = "Auth"
	TagUser    = "User"
	TagProduct = "Product"
)

// SignupRequest is the body of POST /auth/signup/.
type SignupRequest struct {
	Role          domain.Role `json:"role"`
	Email         string      `json:"email"`
	Password      string      `json:"password"`
	Name          string      `json:"name"`
	ContactNumber string      `json:"contact_number"`
}

// LoginRequest is the body of POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp/.
type VerifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otp_code"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password/.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otp_code"`
	NewPassword string `json:"new_password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Signup registers a new retailer and triggers an OTP.
func (s *Session) Signup(ctx context.Context, in SignupRequest) (domain.SignupResult, error) {
	if in.Role == "" {
		in.Role = domain.RoleRetailer
	}
	var out domain.SignupResult
	_, err := s.decode(ctx, request{op: "signup", method: http.MethodPost, path: "/auth/signup/", payload: in}, &out, true)
	return out, err
}

// Login exchanges credentials for tokens.
func (s *Session) Login(ctx context.Context, in LoginRequest) (domain.AuthTokens, error) {
	var out domain.AuthTokens
	if _, err := s.decode(ctx, request{op: "login", method: http.MethodPost, path: "/auth/login/", payload: in}, &out, true); err != nil {
		return domain.AuthTokens{}, err
	}
	s.invalidate(ctx, "login", cache.TypeTag(TagAuth))
	return out, nil
}

// VerifyOTP confirms an OTP and returns the issued tokens.
func (s *Session) VerifyOTP(ctx context.Context, in VerifyOTPRequest) (domain.AuthTokens, error) {
	var out domain.AuthTokens
	_, err := s.decode(ctx, request{op: "verifyOtp", method: http.MethodPost, path: "/auth/verify-otp/", payload: in}, &out, true)
	return out, err
}

// ForgotPassword starts a password reset and returns the email the OTP was sent to.
func (s *Session) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out emailRequest
	if _, err := s.decode(ctx, request{op: "forgotPassword", method: http.MethodPost, path: "/auth/forgot-password/", payload: emailRequest{Email: email}}, &out, false); err != nil {
		return "", err
	}
	if out.Email == "" {
		out.Email = email
	}
	return out.Email, nil
}

// ResetPassword sets a new password. The upstream returns no data, only a message.
func (s *Session) ResetPassword(ctx context.Context, in ResetPasswordRequest) (string, error) {
	env, err := s.do(ctx, request{op: "resetPassword", method: http.MethodPost, path: "/auth/reset-password/", payload: in})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ResendOTP issues a fresh OTP.
func (s *Session) ResendOTP(ctx context.Context, email string) (domain.SignupResult, error) {
	var out domain.SignupResult
	_, err := s.decode(ctx, request{op: "resendOtp", method: http.MethodPost, path: "/auth/resend-otp/", payload: emailRequest{Email: email}}, &out, true)
	return out, err
}

// Logout revokes the session upstream.
func (s *Session) Logout(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	env, err := s.decode(ctx, request{op: "logout", method: http.MethodPost, path: "/auth/logout/"}, &out, false)
	if err != nil {
		return "", err
	}
	s.invalidate(ctx, "logout", cache.TypeTag(TagAuth))
	if out.Message == "" {
		out.Message = env.Message
	}
	return out.Message, nil
}

// CurrentUser returns the user owning the token.
func (s *Session) CurrentUser(ctx context.Context) (domain.AuthUser, error) {
	return cache.Fetch(ctx, s.client.cache, s.scope(), cache.Query[domain.AuthUser]{
		Endpoint: "currentUser",
		Fetch: func(ctx context.Context) (domain.AuthUser, error) {
			var out domain.AuthUser
			_, err := s.decode(ctx, request{op: "currentUser", method: http.MethodGet, path: "/auth/me/"}, &out, true)
			return out, err
		},
		Provides: func(domain.AuthUser) []cache.Tag {
			return []cache.Tag{cache.TypeTag(TagAuth)}
		},
	})
}

// ProfileSetup submits the retailer business profile.
func (s *Session) ProfileSetup(ctx context.Context, in domain.ProfileSetup) (string, error) {
	if in.DeliveryAreas == nil {
		in.DeliveryAreas = []string{}
	}
	var out struct {
		Message string `json:"message"`
	}
	env, err := s.decode(ctx, request{op: "profileSetup", method: http.MethodPost, path: "/retailer/profile/setup/", payload: in}, &out, false)
	if err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = env.Message
	}
	return out.Message, nil
}

// invalidate drops the tagged entries of this session's scope. The mutation has
// already succeeded, so failures are only logged.
func (s *Session) invalidate(ctx context.Context, op string, tags ...cache.Tag) {
	if err := s.client.cache.Invalidate(ctx, s.scope(), op, tags...); err != nil {
		s.client.logger.Warn("cache invalidation failed", zap.String("op", op), zap.Error(err))
	}
}
