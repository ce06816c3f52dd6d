package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/api/dto"
	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/service"
	"github.com/spec-kit/retailer-dashboard/internal/session"
	apperrors "github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// AuthHandler exposes the sign-in, sign-up and recovery actions.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *session.CookieStore
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *session.CookieStore) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), session.FromCtx(c, h.cookies), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Remember: req.RememberMe,
		Redirect: req.Redirect,
	})
	if err != nil {
		return err
	}
	return c.JSON(actionResponse(result))
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	result, err := h.auth.Signup(c.UserContext(), session.FromCtx(c, h.cookies), apiclient.SignupRequest{
		Email:         strings.TrimSpace(req.Email),
		Password:      req.Password,
		Name:          strings.TrimSpace(req.Name),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(actionResponse(result))
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Flow == "" {
		req.Flow = c.Query("flow")
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		return apperrors.NewValidationError("email and otp required", nil)
	}

	result, err := h.auth.VerifyOTP(c.UserContext(), session.FromCtx(c, h.cookies), service.VerifyOTPInput{
		Email: req.Email,
		OTP:   strings.TrimSpace(req.OTP),
		Flow:  req.Flow,
	})
	if err != nil {
		return err
	}
	return c.JSON(actionResponse(result))
}

// ResendOTP handles POST /api/auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	email, err := parseEmail(c)
	if err != nil {
		return err
	}
	result, err := h.auth.ResendOTP(c.UserContext(), session.FromCtx(c, h.cookies), email)
	if err != nil {
		return err
	}
	return c.JSON(actionResponse(result))
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	email, err := parseEmail(c)
	if err != nil {
		return err
	}
	result, err := h.auth.ForgotPassword(c.UserContext(), session.FromCtx(c, h.cookies), email)
	if err != nil {
		return err
	}
	return c.JSON(actionResponse(result))
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("email, otp, new_password required", nil)
	}

	result, err := h.auth.ResetPassword(c.UserContext(), session.FromCtx(c, h.cookies), apiclient.ResetPasswordRequest{
		Email:       strings.TrimSpace(req.Email),
		OTPCode:     strings.TrimSpace(req.OTP),
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(actionResponse(result))
}

// ProfileSetup handles POST /api/auth/profile-setup.
func (h *AuthHandler) ProfileSetup(c *fiber.Ctx) error {
	var req dto.ProfileSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.BusinessName) == "" {
		return apperrors.NewValidationError("business_name required", map[string]any{"field": "business_name"})
	}

	result, err := h.auth.ProfileSetup(c.UserContext(), session.FromCtx(c, h.cookies), service.ProfileSetupInput{
		BusinessName:          req.BusinessName,
		DeliveryCharge:        req.DeliveryCharge,
		FreeDeliveryThreshold: req.FreeDeliveryThreshold,
		DeliveryAreas:         req.DeliveryAreas,
		APIKey:                req.APIKey,
	})
	if err != nil {
		return err
	}
	return c.JSON(actionResponse(result))
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	result := h.auth.Logout(c.UserContext(), session.FromCtx(c, h.cookies))
	return c.JSON(actionResponse(result))
}

func parseEmail(c *fiber.Ctx) (string, error) {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return "", apperrors.NewValidationError("invalid payload", nil)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return "", apperrors.NewValidationError("email required", map[string]any{"field": "email"})
	}
	return email, nil
}
