package domain

import (
	"fmt"
	"time"
)

// OwnerKind tells who owns a virtual account
type OwnerKind string

const (
	OwnerUser     OwnerKind = "USER"     // Account held by a platform user
	OwnerPlatform OwnerKind = "PLATFORM" // Account held by the platform itself
)

// OwnerRef identifies the single owner of an account
type OwnerRef struct {
	Kind OwnerKind
	ID   uint
}

// UserOwner returns the owner reference of a user
func UserOwner(userID uint) OwnerRef {
	return OwnerRef{Kind: OwnerUser, ID: userID}
}

// PlatformOwner returns the owner reference of a platform
func PlatformOwner(platformID uint) OwnerRef {
	return OwnerRef{Kind: OwnerPlatform, ID: platformID}
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s:%d", o.Kind, o.ID)
}

// Valid reports whether the reference names exactly one known owner kind
func (o OwnerRef) Valid() bool {
	return (o.Kind == OwnerUser || o.Kind == OwnerPlatform) && o.ID != 0
}

// Account Model
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                      // Primary key
	OwnerKind OwnerKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_account_owner" json:"owner_kind"` // USER or PLATFORM
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_account_owner" json:"owner_id"`                    // User or platform ID
	Balance   int64     `gorm:"not null;default:0" json:"balance"`                                         // Balance in minor units
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`                                   // Deactivated rather than deleted
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner returns the reference of the account's owner
func (a *Account) Owner() OwnerRef {
	return OwnerRef{Kind: a.OwnerKind, ID: a.OwnerID}
}
