package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a login identity, created on first federated sign-in and keyed
// by the Google subject id. Students in the roster are plain data rows and
// carry no link back to the user that created them.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	GoogleID  string    `bun:"google_id,unique,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"-"`
}

// Session stores issued session tokens in the database so that every
// protected request can be checked against it and logout can revoke.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:se"`

	ID        int       `bun:"id,pk,autoincrement"`
	Token     string    `bun:"token,unique,notnull"`
	UserID    int       `bun:"user_id,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// LoginRequest is the request body for login. The client either sends the
// assertion fields it got from the sign-in widget, or the raw Google ID
// token as credential and lets the server extract the claims.
type LoginRequest struct {
	DisplayName       string `json:"displayName"`
	Email             string `json:"email" validate:"omitempty,email"`
	ProviderSubjectID string `json:"providerSubjectId" validate:"required_without=Credential"`
	Credential        string `json:"credential" validate:"required_without=ProviderSubjectID"`
}

// AuthResponse is the response for a successful login.
type AuthResponse struct {
	SessionToken string `json:"sessionToken"`
	User         *User  `json:"user"`
}
