package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/auth"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/internal/events"
	"github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// User-facing messages of the auth flows.
const (
	MsgLoginFailed        = "Login failed. Please try again."
	MsgRetailerOnly       = "Access denied. This dashboard is only for retailers."
	MsgVerifyEmailFirst   = "Please verify your email first"
	MsgInvalidOTPResponse = "Invalid response from server"
	MsgInvalidOTP         = "Invalid OTP. Please try again."
)

// LoginInput is a sign-in form submission.
type LoginInput struct {
	Email    string
	Password string
	Remember bool
	Redirect string
}

// VerifyOTPInput is an OTP form submission.
type VerifyOTPInput struct {
	Email string
	OTP   string
	Flow  string
}

// ProfileSetupInput is the business profile form. DeliveryAreas is comma separated.
type ProfileSetupInput struct {
	BusinessName          string
	DeliveryCharge        string
	FreeDeliveryThreshold string
	DeliveryAreas         string
	APIKey                string
}

// AuthService runs the sign-in, sign-up and recovery flows against the upstream API
// and is the only writer of the session.
type AuthService struct {
	api        *apiclient.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(api *apiclient.Client, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{api: api, dispatcher: dispatcher, logger: logger}
}

// Login authenticates a retailer and writes the session. Non-retailer accounts are
// rejected before anything is stored.
func (s *AuthService) Login(ctx context.Context, sess Session, in LoginInput) (Result, error) {
	tokens, err := s.api.WithTokens(sess).Login(ctx, apiclient.LoginRequest{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	if err != nil {
		return Result{}, withFallbackMessage(err, MsgLoginFailed)
	}
	if tokens.Access == "" {
		return Result{}, errorutil.NewUpstreamError(0, MsgLoginFailed, errors.New("login response without access token"))
	}

	if domain.Role(tokens.User.AccountType) != domain.RoleRetailer {
		s.logger.Info("login rejected for non-retailer account", zap.String("account_type", tokens.User.AccountType))
		return Result{}, errorutil.NewForbidden(MsgRetailerOnly)
	}

	record := domain.Session{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		Role:         domain.RoleRetailer,
		Email:        tokens.User.Email,
		Name:         tokens.User.Name,
	}
	if !record.Complete() {
		return Result{}, errorutil.NewUpstreamError(0, MsgLoginFailed, errors.New("login response without refresh token or user details"))
	}
	sess.Replace(record, in.Remember)
	s.publish(ctx, events.EventSessionCreated, events.SessionPayload{Email: record.Email, Role: string(record.Role), Reason: "login"})

	return Result{
		Redirect: safeRedirect(in.Redirect, auth.DefaultPath(record.Role)),
		Message:  "Logged in successfully!",
	}, nil
}

// Signup registers a retailer and sends them to OTP verification.
func (s *AuthService) Signup(ctx context.Context, sess Session, in apiclient.SignupRequest) (Result, error) {
	in.Role = domain.RoleRetailer
	res, err := s.api.WithTokens(sess).Signup(ctx, in)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Redirect: verifyOTPPath(FlowSignup),
		Message:  "Account created. Check your email for the verification code.",
		Data:     map[string]string{"email": res.Email},
	}, nil
}

// VerifyOTP confirms a code. In the signup flow the issued tokens are held aside
// as pending setup tokens; the reset flow continues to the new-password form.
func (s *AuthService) VerifyOTP(ctx context.Context, sess Session, in VerifyOTPInput) (Result, error) {
	flow := in.Flow
	if flow != FlowReset {
		flow = FlowSignup
	}

	tokens, err := s.api.WithTokens(sess).VerifyOTP(ctx, apiclient.VerifyOTPRequest{Email: strings.TrimSpace(in.Email), OTPCode: in.OTP})
	if err != nil {
		return Result{}, withFallbackMessage(err, MsgInvalidOTP)
	}

	if flow == FlowReset {
		return Result{Redirect: PathResetPassword, Message: "Verification successful!"}, nil
	}

	if tokens.Access == "" {
		return Result{}, errorutil.NewUpstreamError(0, MsgInvalidOTPResponse, errors.New("otp response without access token"))
	}
	sess.StorePending(domain.PendingSetup{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		Email:        tokens.User.Email,
		Name:         tokens.User.Name,
	})
	return Result{Redirect: PathProfileSetup, Message: "Verification successful! Please setup your profile!"}, nil
}

// ResendOTP issues a fresh code.
func (s *AuthService) ResendOTP(ctx context.Context, sess Session, email string) (Result, error) {
	if _, err := s.api.WithTokens(sess).ResendOTP(ctx, strings.TrimSpace(email)); err != nil {
		return Result{}, err
	}
	return Result{Message: "A new code has been sent to your email."}, nil
}

// ForgotPassword starts a reset and sends the user to OTP verification.
func (s *AuthService) ForgotPassword(ctx context.Context, sess Session, email string) (Result, error) {
	sentTo, err := s.api.WithTokens(sess).ForgotPassword(ctx, strings.TrimSpace(email))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Redirect: verifyOTPPath(FlowReset),
		Message:  "A verification code has been sent to your email.",
		Data:     map[string]string{"email": sentTo},
	}, nil
}

// ResetPassword sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, sess Session, in apiclient.ResetPasswordRequest) (Result, error) {
	msg, err := s.api.WithTokens(sess).ResetPassword(ctx, in)
	if err != nil {
		return Result{}, err
	}
	if msg == "" {
		msg = "Password reset successfully."
	}
	return Result{Redirect: PathResetSuccess, Message: msg}, nil
}

// ProfileSetup completes a signup using the pending setup tokens, then drops them.
// The user signs in normally afterwards.
func (s *AuthService) ProfileSetup(ctx context.Context, sess Session, in ProfileSetupInput) (Result, error) {
	pending, ok := sess.Pending()
	if !ok {
		return Result{}, errorutil.NewUnauthorized(MsgVerifyEmailFirst)
	}

	msg, err := s.api.WithTokens(tokenFunc(func() string { return pending.AccessToken })).ProfileSetup(ctx, domain.ProfileSetup{
		BusinessName:          strings.TrimSpace(in.BusinessName),
		DeliveryCharge:        strings.TrimSpace(in.DeliveryCharge),
		FreeDeliveryThreshold: strings.TrimSpace(in.FreeDeliveryThreshold),
		DeliveryAreas:         SplitDeliveryAreas(in.DeliveryAreas),
		APIKey:                strings.TrimSpace(in.APIKey),
	})
	if err != nil {
		return Result{}, err
	}

	sess.ClearPending()
	if msg == "" {
		msg = "Profile setup completed successfully!"
	}
	return Result{Redirect: PathSignIn, Message: msg}, nil
}

// Logout revokes the session upstream when possible and always clears it locally.
func (s *AuthService) Logout(ctx context.Context, sess Session) Result {
	record, _ := sess.Session()
	if sess.AccessToken() != "" {
		if _, err := s.api.WithTokens(sess).Logout(ctx); err != nil {
			s.logger.Warn("upstream logout failed", zap.Error(err))
		}
	}
	sess.Clear()
	s.publish(ctx, events.EventSessionCleared, events.SessionPayload{Email: record.Email, Role: string(record.Role), Reason: "logout"})
	return Result{Redirect: PathSignIn, Message: "Logged out"}
}

// SplitDeliveryAreas turns "a, b,,c" into [a b c].
func SplitDeliveryAreas(raw string) []string {
	areas := []string{}
	for _, part := range strings.Split(raw, ",") {
		if area := strings.TrimSpace(part); area != "" {
			areas = append(areas, area)
		}
	}
	return areas
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload events.SessionPayload) {
	if err := s.dispatcher.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.logger.Warn("session event handlers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func verifyOTPPath(flow string) string {
	q := url.Values{}
	q.Set("flow", flow)
	return PathVerifyOTP + "?" + q.Encode()
}

// withFallbackMessage replaces a missing or generic upstream message with fallback.
func withFallbackMessage(err error, fallback string) error {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Code == apiclient.ErrMalformedResponse || apiErr.Message == "" || apiErr.Message == errorutil.GenericMessage {
		return errorutil.NewUpstreamError(apiErr.StatusCode, fallback, err)
	}
	return err
}
