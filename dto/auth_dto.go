package dto

type LocalLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginStateResponse struct {
	State   string `json:"state"`
	AuthURL string `json:"auth_url"`
}

// LoginResponse reports the established session. AlreadyConnected is set
// when the request already carried a session for the same user.
type LoginResponse struct {
	Token            string `json:"token"`
	UserID           uint   `json:"user_id"`
	DisplayName      string `json:"display_name"`
	IsAdmin          bool   `json:"is_admin"`
	AlreadyConnected bool   `json:"already_connected,omitempty"`
}
