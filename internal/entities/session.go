package entities

import "docshare/internal/models"

// Session is what a login token resolves to in the session cache. Groups are
// informational; authorization reloads them from the store.
type Session struct {
	UserID      string   `json:"user_id"`
	Login       string   `json:"login"`
	IsSuperuser bool     `json:"is_superuser"`
	Groups      []string `json:"groups,omitempty"`
}

func NewSession(u *models.User) Session {
	return Session{
		UserID:      u.ID,
		Login:       u.Login,
		IsSuperuser: u.IsSuperuser,
		Groups:      u.Groups,
	}
}

func (s Session) ToModel() *models.User {
	return &models.User{
		ID:          s.UserID,
		Login:       s.Login,
		IsSuperuser: s.IsSuperuser,
		Groups:      s.Groups,
	}
}
