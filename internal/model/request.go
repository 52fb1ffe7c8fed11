package model

// ContactRequest is the contact form payload posted by the landing page.
type ContactRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Area     string `json:"area" validate:"omitempty,max=120"`
	ClientID string `json:"client_id,omitempty" validate:"omitempty,max=128"`
}

// ContactResult is returned once the form reached the webhook.
type ContactResult struct {
	Success bool   `json:"success"`
	EventID string `json:"event_id,omitempty"`
}

// PageViewRequest is sent by the page when it mounts.
type PageViewRequest struct {
	PageLocation string `json:"page_location"`
	PageTitle    string `json:"page_title"`
}

// FormEventRequest tracks a step of the form funnel.
type FormEventRequest struct {
	Type     EventType `json:"type"`
	FormName string    `json:"form_name"`
	Area     string    `json:"area"`
}

// TrackRequest tracks an arbitrary event.
type TrackRequest struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data"`
}

// RequestContext carries what the HTTP layer knows about the browser.
type RequestContext struct {
	ClientIP  string
	UserAgent string
	Referer   string
}

// TrackResult is the outcome of one dispatch.
type TrackResult struct {
	EventID string  `json:"event_id"`
	Results Results `json:"results"`
}
