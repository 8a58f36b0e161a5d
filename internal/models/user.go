package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// Valid reports whether r is one of the known role tags.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

type User struct {
	ID                 uint64     `gorm:"primarykey" json:"id"`
	Username           string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"type:varchar(255);not null" json:"-"`
	Role               Role       `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	IsSubscribed       bool       `gorm:"not null;default:false" json:"is_subscribed"`
	SubscriptionEndsAt *time.Time `json:"subscription_end_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds an administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperuser
}
