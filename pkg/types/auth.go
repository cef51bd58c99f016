package types

// User is the account returned by the backend on login.
type User struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// LoginCredentials is the body of POST /api/auth/login/.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token issued by the backend.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
