package domain

import "time"

// User is a row of the usuarios table. SenhaHash and Token never leave the
// backend; use UserResponse for anything sent to a client.
type User struct {
	ID         int64
	Nome       string
	Email      string
	Usuario    string
	SenhaHash  string
	FotoPerfil *string
	Token      *string
	CriadoEm   time.Time
}

// UserProfile is the safe projection of a User.
type UserProfile struct {
	ID         int64   `json:"id"`
	Nome       string  `json:"nome"`
	Email      string  `json:"email"`
	Usuario    string  `json:"usuario"`
	FotoPerfil *string `json:"foto_perfil"`
}

func (u *User) UserResponse() UserProfile {
	return UserProfile{
		ID:         u.ID,
		Nome:       u.Nome,
		Email:      u.Email,
		Usuario:    u.Usuario,
		FotoPerfil: u.FotoPerfil,
	}
}

// CurrentToken returns the stored session token, or "" when none is held.
func (u *User) CurrentToken() string {
	if u.Token == nil {
		return ""
	}
	return *u.Token
}
