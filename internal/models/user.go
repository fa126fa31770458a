package models

// UserSnapshot is the denormalized identity of the acting user, copied onto
// every record at creation time. It is a cache of identity-at-time-of-action,
// not a live reference — the identity provider itself is external.
type UserSnapshot struct {
	UID      string `json:"uid"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Photo    string `json:"photo"`
}

// Matches reports whether the snapshot and the given identity refer to the
// same user. UID wins when both sides carry one; records created before UIDs
// were mandatory fall back to email.
func (u UserSnapshot) Matches(other UserSnapshot) bool {
	if u.UID != "" && other.UID != "" {
		return u.UID == other.UID
	}
	return u.Email != "" && u.Email == other.Email
}
