package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"       json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"           json:"email"`
	PasswordHash string    `gorm:"not null"                       json:"-"`
	FirstName    string    `gorm:"not null;default:''"            json:"firstName"`
	LastName     string    `gorm:"not null;default:''"            json:"lastName"`
	Role         string    `gorm:"not null;default:customer"      json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken is the server-side session record. Only the sha256 of the token is stored.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"    json:"-"`
	UserID    uint      `gorm:"index;not null"          json:"userId"`
	JTI       string    `gorm:"uniqueIndex;not null"    json:"jti"`
	ExpiresAt time.Time `gorm:"not null"                json:"expiresAt"`
	Revoked   bool      `gorm:"not null;default:false"  json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
