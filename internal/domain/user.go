package domain

import "io"

// Profile is the retailer profile returned by /auth/me/.
type Profile struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	Name                string  `json:"name"`
	Image               *string `json:"image"`
	ContactNumber       string  `json:"contact_number"`
	Role                string  `json:"role"`
	StaffLimit          int     `json:"staff_limit"`
	NotificationEnabled bool    `json:"notification_enabled"`
	Verified            bool    `json:"verified"`
	SubUsersCount       int     `json:"sub_users_count"`
	CanCreateStaff      bool    `json:"can_create_staff"`
	CreatedAt           string  `json:"created_at"`
}

// Upload is a file forwarded to the upstream API in a multipart body.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileUpdate carries the optional fields of a profile update. Nil fields are not sent.
type ProfileUpdate struct {
	Name          *string
	ContactNumber *string
	Image         *Upload
}

// Empty reports whether the update carries no field.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.ContactNumber == nil && u.Image == nil
}

// ProfileSetup is the retailer business profile submitted after email verification.
type ProfileSetup struct {
	BusinessName          string   `json:"business_name"`
	DeliveryCharge        string   `json:"delivery_charge"`
	FreeDeliveryThreshold string   `json:"free_delivery_threshold"`
	DeliveryAreas         []string `json:"delivery_areas"`
	APIKey                string   `json:"api_key"`
}
