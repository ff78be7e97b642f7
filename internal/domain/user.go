package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         UserRole  `json:"role" gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_vehicles_user_plate"`
	PlateNumber string    `json:"plate_number" gorm:"size:32;not null;uniqueIndex:idx_vehicles_user_plate"`
	Make        string    `json:"make,omitempty" gorm:"size:64"`
	Model       string    `json:"model,omitempty" gorm:"size:64"`
	Color       string    `json:"color,omitempty" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	UserID int64
	Role   string
}
