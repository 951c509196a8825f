package models

type contextKey string

const UserContextKey contextKey = "user"

type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	PassHash    []byte `json:"-"`
	IsSuperuser bool   `json:"is_superuser"`
	// Groups is informational; access decisions read membership from the store.
	Groups []string `json:"groups,omitempty"`
}

// IsAuthenticated reports whether u is a known subject. A nil user is anonymous.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != ""
}

func (u *User) SubjectID() string {
	if u == nil {
		return ""
	}
	return u.ID
}

type ClientInfo struct {
	IP        string
	UserAgent string
}

const ClientInfoContextKey contextKey = "client_info"
