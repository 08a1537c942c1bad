package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Redirect string          `json:"redirect"`
	Session  SessionResponse `json:"session"`
}

type LogoutResponse struct {
	Redirect string `json:"redirect"`
}
