package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/api/dto"
	"github.com/spec-kit/retailer-dashboard/internal/service"
	"github.com/spec-kit/retailer-dashboard/internal/session"
	apperrors "github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// ProfileHandler exposes the retailer profile.
type ProfileHandler struct {
	profiles *service.ProfileService
	cookies  *session.CookieStore
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *service.ProfileService, cookies *session.CookieStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, cookies: cookies}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.UserContext(), session.FromCtx(c, h.cookies))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

// Update handles PATCH /api/profile. Multipart and urlencoded bodies may carry an image;
// JSON bodies carry text fields only.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var changes service.ProfileChanges

	if c.Is("json") {
		var req dto.ProfileUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		changes.Name = trimmed(req.Name)
		changes.ContactNumber = trimmed(req.ContactNumber)
	} else {
		changes.Name = trimmed(formValue(c, "name"))
		changes.ContactNumber = trimmed(formValue(c, "contact_number"))
		image, closeImage, err := formUpload(c, "image")
		if err != nil {
			return err
		}
		defer closeImage()
		changes.Image = image
	}

	profile, err := h.profiles.Update(c.UserContext(), session.FromCtx(c, h.cookies), changes)
	if err != nil {
		return err
	}
	return c.JSON(dto.ActionResponse{Data: profile, Message: "Profile updated successfully"})
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
