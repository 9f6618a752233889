package domain

import "time"

const (
	DefaultPlatformName = "Money Transfer Platform" // Name used when none is configured
	DefaultFeeRate      = 2                         // Withdrawal fee in percent
)

// Platform Model, a singleton holding the fee configuration
type Platform struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                      // Primary key
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`        // Platform name
	FeeRate   int       `gorm:"not null;check:fee_rate BETWEEN 0 AND 100" json:"fee_rate"` // Withdrawal fee in percent
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidFeeRate reports whether rate is a percentage in [0, 100]
func ValidFeeRate(rate int) bool {
	return rate >= 0 && rate <= 100
}

// WithdrawalFee returns floor(amount * rate / 100) without overflowing for
// any non-negative amount.
func WithdrawalFee(amount int64, rate int) int64 {
	if amount <= 0 || rate <= 0 {
		return 0
	}
	r := int64(rate)
	return (amount/100)*r + (amount%100)*r/100
}

// PlatformHandle is what the transaction engine needs to know about the
// platform: which row holds the fee rate and which account collects fees.
type PlatformHandle struct {
	PlatformID uint
	AccountID  uint
}
