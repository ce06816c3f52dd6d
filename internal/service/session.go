package service

import (
	"strings"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// Session is the request-bound session the flows read and replace.
// session.Context implements it.
type Session interface {
	AccessToken() string
	Session() (domain.Session, bool)
	Replace(sess domain.Session, remember bool)
	Mirror(sess domain.Session)
	Clear()
	Pending() (domain.PendingSetup, bool)
	StorePending(p domain.PendingSetup)
	ClearPending()
}

// Result tells the caller where to go next and what to show.
type Result struct {
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// Landing paths of the auth flows.
const (
	PathDashboard      = "/dashboard"
	PathSignIn         = "/signin"
	PathVerifyOTP      = "/verify-otp"
	PathProfileSetup   = "/profile-setup"
	PathResetPassword  = "/reset-password"
	PathResetSuccess   = "/reset-success"
	FlowSignup         = "signup"
	FlowReset          = "reset"
	maxProfileNameLen  = 32
	maxImageUploadSize = 5 * 1024 * 1024
)

// safeRedirect keeps only same-origin absolute paths.
func safeRedirect(target, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}

type tokenFunc func() string

func (f tokenFunc) AccessToken() string { return f() }
