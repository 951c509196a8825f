package dto

type UserRequest struct {
	Login       string   `json:"login"`
	Password    string   `json:"pswd"`
	AdminToken  string   `json:"token"`
	Groups      []string `json:"groups"`
	IsSuperuser bool     `json:"superuser"`
}

type SessionRequest struct {
	Login    string `json:"login"`
	Password string `json:"pswd"`
}
