package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// Profile validation messages.
const (
	MsgNoChanges       = "No changes to save"
	MsgNameTooLong     = "Name must be 32 characters or less."
	MsgInvalidFileType = "Please select an image file."
	MsgFileTooLarge    = "Please select an image smaller than 5MB."
)

// ProfileChanges is a profile form submission. Nil fields were not edited.
type ProfileChanges struct {
	Name          *string
	ContactNumber *string
	Image         *domain.Upload
}

// ProfileService reads and edits the retailer profile.
type ProfileService struct {
	api    *apiclient.Client
	logger *zap.Logger
}

// NewProfileService builds the service.
func NewProfileService(api *apiclient.Client, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{api: api, logger: logger}
}

// Get returns the profile of the session owner.
func (s *ProfileService) Get(ctx context.Context, sess Session) (domain.Profile, error) {
	return s.api.WithTokens(sess).Profile(ctx)
}

// Update sends the fields that differ from the current profile. Validation failures
// never reach the network. On success the in-memory session picks up the new name
// for the rest of the current request only; the name cookie is not rewritten, so
// later requests see the old name until the next login.
func (s *ProfileService) Update(ctx context.Context, sess Session, changes ProfileChanges) (domain.Profile, error) {
	if changes.Name != nil && len([]rune(*changes.Name)) > maxProfileNameLen {
		return domain.Profile{}, errorutil.NewValidationError(MsgNameTooLong, map[string]any{"field": "name"})
	}
	if changes.Image != nil {
		if err := ValidateImage(changes.Image); err != nil {
			return domain.Profile{}, err
		}
	}

	api := s.api.WithTokens(sess)
	current, err := api.Profile(ctx)
	if err != nil {
		return domain.Profile{}, err
	}

	update := domain.ProfileUpdate{Image: changes.Image}
	if changes.Name != nil && *changes.Name != current.Name {
		update.Name = changes.Name
	}
	if changes.ContactNumber != nil && *changes.ContactNumber != current.ContactNumber {
		update.ContactNumber = changes.ContactNumber
	}
	if update.Empty() {
		return domain.Profile{}, errorutil.NewValidationError(MsgNoChanges, nil)
	}

	updated, err := api.UpdateProfile(ctx, update)
	if err != nil {
		return domain.Profile{}, err
	}

	if record, ok := sess.Session(); ok && updated.Name != "" && updated.Name != record.Name {
		record.Name = updated.Name
		sess.Mirror(record)
		s.logger.Debug("session name refreshed from profile update")
	}
	return updated, nil
}

// ValidateImage accepts image/* uploads of at most 5 MiB.
func ValidateImage(upload *domain.Upload) error {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return errorutil.NewValidationError(MsgInvalidFileType, map[string]any{"field": "image", "content_type": upload.ContentType})
	}
	if upload.Size > maxImageUploadSize {
		return errorutil.NewValidationError(MsgFileTooLarge, map[string]any{"field": "image", "size": fmt.Sprint(upload.Size)})
	}
	return nil
}
