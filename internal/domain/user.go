package domain

import "time"

// UserStatus is the lifecycle state of a user as seen by the ledger
type UserStatus string

const (
	UserPending   UserStatus = "PENDING"   // Registered, not yet validated
	UserActive    UserStatus = "ACTIVE"    // Allowed to transact
	UserSuspended UserStatus = "SUSPENDED" // Blocked by an administrator
)

// User Model
//
// Users are registered by the authentication service; the ledger only reads
// them and flips Status/IsVerified through the account lifecycle calls.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`                                    // Primary key
	Email      string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`     // Unique, lower case
	Status     UserStatus `gorm:"type:varchar(10);not null;default:PENDING" json:"status"` // PENDING, ACTIVE or SUSPENDED
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`               // Set once the OTP was validated
	Role       string     `gorm:"type:varchar(10);default:user" json:"role"`               // Role: user or admin
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
