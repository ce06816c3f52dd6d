package dto

// ActionResponse is returned by form actions.
type ActionResponse struct {
	Data     any    `json:"data,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// PageResponse is the view model of a page.
type PageResponse struct {
	Page string `json:"page"`
	Data any    `json:"data"`
}
