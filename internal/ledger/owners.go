package ledger

import (
	"errors"
	"fmt"
	"strings"

	"money_transfer/internal/domain"

	"gorm.io/gorm"
)

// Models lists every table the ledger owns, for migrations
func Models() []any {
	return []any{&domain.User{}, &domain.Platform{}, &domain.Account{}, &transactionRow{}}
}

// FindUser returns the user with the given id or domain.ErrUserNotFound
func (s *Store) FindUser(id uint) (*domain.User, error) {
	var u domain.User
	err := s.db.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail looks a user up by email, case-insensitively
func (s *Store) FindUserByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user record. Registration lives outside the ledger;
// this is used by seeding and tests.
func (s *Store) CreateUser(u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return s.db.Create(u).Error
}

// UpdateUserStatus writes the user's status and, when verified is non-nil,
// the verified flag.
func (s *Store) UpdateUserStatus(userID uint, status domain.UserStatus, verified *bool) error {
	updates := map[string]any{"status": status}
	if verified != nil {
		updates["is_verified"] = *verified
	}
	res := s.db.Model(&domain.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
	}
	return nil
}

// FirstPlatform returns the platform singleton, if it was created
func (s *Store) FirstPlatform() (*domain.Platform, bool, error) {
	var p domain.Platform
	err := s.db.Order("id").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// FindPlatform returns the platform with the given id
func (s *Store) FindPlatform(id uint) (*domain.Platform, error) {
	var p domain.Platform
	if err := s.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlatform inserts the platform row
func (s *Store) CreatePlatform(p *domain.Platform) error {
	if !domain.ValidFeeRate(p.FeeRate) {
		return domain.ErrInvalidFeeRate
	}
	return s.db.Create(p).Error
}

// UpdateFeeRate changes the platform withdrawal fee rate
func (s *Store) UpdateFeeRate(platformID uint, rate int) error {
	if !domain.ValidFeeRate(rate) {
		return domain.ErrInvalidFeeRate
	}
	return s.db.Model(&domain.Platform{}).Where("id = ?", platformID).Update("fee_rate", rate).Error
}
