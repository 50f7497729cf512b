package model

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Mobile   string `json:"mobile,omitempty"`
}

// JwtResponse is the login/register payload: a bearer token plus the user
// attributes the client persists alongside it.
type JwtResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// User returns the profile attributes of the payload, without the token.
func (r *JwtResponse) User() User {
	return User{ID: r.ID, Username: r.Username, Role: r.Role}
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Mobile           string `json:"mobile,omitempty"`
	SecurityQuestion string `json:"securityQuestion,omitempty"`
	SecurityAnswer   string `json:"securityAnswer,omitempty"`
	Role             Role   `json:"role,omitempty"`
}

type SecurityQuestionRequest struct {
	Username string `json:"username"`
}

type SecurityQuestionResponse struct {
	Question string `json:"question"`
}

type ResetPasswordRequest struct {
	Username    string `json:"username"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}
