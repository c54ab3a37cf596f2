package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName    string     `json:"firstName" gorm:"size:100;not null"`
	LastName     string     `json:"lastName" gorm:"size:100;not null"`
	Username     string     `json:"username" gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time  `json:"createdAt"`
	ModifiedAt   *time.Time `json:"modifiedAt,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
