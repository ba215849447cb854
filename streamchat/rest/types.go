package rest

import "encoding/json"

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// TokenResponse is returned by the JWT login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the account record returned by register and /users/me.
type User struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	IsActive   bool    `json:"is_active"`
	IsVerified bool    `json:"is_verified"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
}

// ErrorResponse represents an API error response. Detail is either a code
// string such as "LOGIN_BAD_CREDENTIALS" or a validation object.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// String renders Detail for error messages.
func (e ErrorResponse) String() string {
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	return string(e.Detail)
}
