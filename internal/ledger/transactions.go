package ledger

import (
	"errors"
	"fmt"
	"time"

	"money_transfer/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// transactionRow is the persisted form of domain.Transaction
type transactionRow struct {
	ID                uint                     `gorm:"primaryKey"`
	Reference         string                   `gorm:"type:varchar(36);uniqueIndex;not null"`
	Type              domain.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status            domain.TransactionStatus `gorm:"type:varchar(10);not null"`
	Amount            int64                    `gorm:"not null"`
	Fee               int64                    `gorm:"not null;default:0"`
	NetAmount         int64                    `gorm:"not null"`
	SenderAccountID   uint                     `gorm:"not null;index"`
	ReceiverAccountID *uint                    `gorm:"index"`
	Description       string                   `gorm:"type:varchar(255)"`
	CreatedAt         time.Time                `gorm:"not null;index:idx_transactions_created_at,sort:desc"`
}

func (transactionRow) TableName() string {
	return "transactions"
}

// BeforeDelete refuses every delete issued through gorm
func (transactionRow) BeforeDelete(*gorm.DB) error {
	return fmt.Errorf("%w: transactions cannot be deleted", domain.ErrInvariantViolation)
}

func toRow(t *domain.Transaction) *transactionRow {
	row := &transactionRow{
		Reference:       t.Reference().String(),
		Type:            t.Type(),
		Status:          t.Status(),
		Amount:          t.Amount(),
		Fee:             t.Fee(),
		NetAmount:       t.NetAmount(),
		SenderAccountID: t.SenderAccountID(),
		Description:     t.Description(),
		CreatedAt:       t.CreatedAt(),
	}
	if id, ok := t.ReceiverAccountID(); ok {
		row.ReceiverAccountID = &id
	}
	return row
}

func (r *transactionRow) toDomain() (*domain.Transaction, error) {
	ref, err := uuid.Parse(r.Reference)
	if err != nil {
		return nil, fmt.Errorf("transaction %d has a malformed reference: %w", r.ID, err)
	}
	return domain.RestoreTransaction(ref, r.Type, r.Status, r.Amount, r.Fee, r.NetAmount,
		r.SenderAccountID, r.ReceiverAccountID, r.Description, r.CreatedAt), nil
}

// InsertTransaction appends t to the log
func (s *Store) InsertTransaction(t *domain.Transaction) error {
	return s.db.Create(toRow(t)).Error
}

// FinalizeTransaction moves a stored PENDING record to status. A record that
// is missing or already terminal is an invariant violation.
func (s *Store) FinalizeTransaction(ref uuid.UUID, status domain.TransactionStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not a terminal status", domain.ErrInvariantViolation, status)
	}
	res := s.db.Model(&transactionRow{}).
		Where("reference = ? AND status = ?", ref.String(), domain.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: transaction %s is not pending", domain.ErrInvariantViolation, ref)
	}
	return nil
}

// FindTransaction looks a record up by its reference
func (s *Store) FindTransaction(ref uuid.UUID) (*domain.Transaction, bool, error) {
	var row transactionRow
	err := s.db.Where("reference = ?", ref.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	t, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// ListTransactions returns the records the account sent or received, newest
// first.
func (s *Store) ListTransactions(accountID uint, limit int) ([]*domain.Transaction, error) {
	var rows []transactionRow
	err := s.db.Where("sender_account_id = ? OR receiver_account_id = ?", accountID, accountID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	txs := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// SumTransactions totals the amount of records of the given type and status
func (s *Store) SumTransactions(t domain.TransactionType, status domain.TransactionStatus) (int64, error) {
	var total int64
	err := s.db.Model(&transactionRow{}).
		Where("type = ? AND status = ?", t, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
