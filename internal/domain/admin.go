package domain

import "time"

// AdminRole permission tier of a back-office user
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "Admin"
	AdminRoleSuperAdmin AdminRole = "SuperAdmin"
)

// Admin back-office user. PasswordHash never leaves the service.
type Admin struct {
	ID           string    `json:"_id" bson:"_id"`
	FullName     string    `json:"fullName" bson:"fullName"`
	UserName     string    `json:"userName" bson:"userName"`
	Email        string    `json:"email" bson:"email"`
	Images       string    `json:"images,omitempty" bson:"images,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         AdminRole `json:"role" bson:"role"`
	Active       bool      `json:"status" bson:"active"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"`
}
