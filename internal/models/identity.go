package models

// Identity is the authenticated caller: an opaque user handle plus the
// email-like identifier used for record attribution.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
