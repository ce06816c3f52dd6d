package apiclient

import (
	"context"
	"net/http"

	"github.com/spec-kit/retailer-dashboard/internal/cache"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// Profile returns the retailer profile.
func (s *Session) Profile(ctx context.Context) (domain.Profile, error) {
	return cache.Fetch(ctx, s.client.cache, s.scope(), cache.Query[domain.Profile]{
		Endpoint: "profile",
		Fetch: func(ctx context.Context) (domain.Profile, error) {
			var out domain.Profile
			_, err := s.decode(ctx, request{op: "profile", method: http.MethodGet, path: "/auth/me/"}, &out, true)
			return out, err
		},
		Provides: func(domain.Profile) []cache.Tag {
			return []cache.Tag{cache.TypeTag(TagUser)}
		},
	})
}

// UpdateProfile sends the set fields of in as a multipart PATCH.
func (s *Session) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (domain.Profile, error) {
	body := newForm().
		setOptional("name", in.Name).
		setOptional("contact_number", in.ContactNumber).
		file("image", in.Image)

	var out domain.Profile
	if _, err := s.decode(ctx, request{op: "updateProfile", method: http.MethodPatch, path: "/auth/profile/update/", form: body}, &out, false); err != nil {
		return domain.Profile{}, err
	}
	s.invalidate(ctx, "updateProfile", cache.TypeTag(TagUser))
	return out, nil
}
