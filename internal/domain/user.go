package domain

import "time"

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"name"`
	Birthdate       *time.Time `json:"birthdate,omitempty"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"-"`
	OtpCodeHash     string     `json:"-"`
	OtpExpiresAt    *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Verified indica si el email fue confirmado con OTP.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// UserView es la representacion publica de un usuario.
type UserView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u User) View() UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.DisplayName,
		EmailVerified: u.Verified(),
		CreatedAt:     u.CreatedAt,
	}
}
