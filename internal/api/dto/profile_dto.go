package dto

// ProfileUpdateRequest is the JSON variant of the profile form. Absent fields are left unchanged.
type ProfileUpdateRequest struct {
	Name          *string `json:"name"`
	ContactNumber *string `json:"contact_number"`
}
