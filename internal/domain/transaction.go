package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the kind of monetary movement
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
	TypeFee        TransactionType = "FEE"
)

// TransactionStatus moves PENDING -> SUCCESS or PENDING -> FAILED, once
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed
func (s TransactionStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Transaction is an immutable audit record of a monetary movement.
//
// All fields are fixed at construction; Finalize is the only mutator and
// may be called once, from PENDING.
type Transaction struct {
	reference   uuid.UUID
	txType      TransactionType
	status      TransactionStatus
	amount      int64
	fee         int64
	netAmount   int64
	sender      uint
	receiver    *uint
	description string
	createdAt   time.Time
}

func newTransaction(t TransactionType, amount, fee int64, sender uint, receiver *uint, description string) *Transaction {
	return &Transaction{
		reference:   uuid.New(),
		txType:      t,
		status:      StatusPending,
		amount:      amount,
		fee:         fee,
		netAmount:   amount - fee,
		sender:      sender,
		receiver:    receiver,
		description: description,
		createdAt:   time.Now().UTC(),
	}
}

// NewDeposit builds a pending deposit credited to accountID
func NewDeposit(accountID uint, amount int64, description string) *Transaction {
	if description == "" {
		description = fmt.Sprintf("Deposit of %d", amount)
	}
	return newTransaction(TypeDeposit, amount, 0, accountID, &accountID, description)
}

// NewWithdrawal builds a pending withdrawal; the funds leave the system so
// there is no receiver.
func NewWithdrawal(accountID uint, amount, fee int64) *Transaction {
	description := fmt.Sprintf("Withdrawal of %d (fee %d, net %d)", amount, fee, amount-fee)
	return newTransaction(TypeWithdrawal, amount, fee, accountID, nil, description)
}

// NewTransfer builds a pending transfer between two accounts
func NewTransfer(senderID, receiverID uint, amount int64) *Transaction {
	description := fmt.Sprintf("Transfer of %d from account %d to account %d", amount, senderID, receiverID)
	return newTransaction(TypeTransfer, amount, 0, senderID, &receiverID, description)
}

// NewFee builds the fee leg of a withdrawal. It is successful on creation.
func NewFee(senderID, platformAccountID uint, fee int64, rate int) *Transaction {
	t := newTransaction(TypeFee, fee, 0, senderID, &platformAccountID, fmt.Sprintf("Withdrawal fee (%d%%)", rate))
	t.status = StatusSuccess
	return t
}

// RestoreTransaction rebuilds a record read back from storage
func RestoreTransaction(ref uuid.UUID, t TransactionType, status TransactionStatus, amount, fee, net int64, sender uint, receiver *uint, description string, createdAt time.Time) *Transaction {
	var recv *uint
	if receiver != nil {
		id := *receiver
		recv = &id
	}
	return &Transaction{
		reference:   ref,
		txType:      t,
		status:      status,
		amount:      amount,
		fee:         fee,
		netAmount:   net,
		sender:      sender,
		receiver:    recv,
		description: description,
		createdAt:   createdAt,
	}
}

// Finalize moves a pending record to SUCCESS or FAILED.
func (t *Transaction) Finalize(status TransactionStatus) error {
	if t.status != StatusPending {
		return fmt.Errorf("%w: transaction %s is already %s", ErrInvariantViolation, t.reference, t.status)
	}
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not a terminal status", ErrInvariantViolation, status)
	}
	t.status = status
	return nil
}

func (t *Transaction) Reference() uuid.UUID { return t.reference }
func (t *Transaction) Type() TransactionType { return t.txType }
func (t *Transaction) Status() TransactionStatus { return t.status }
func (t *Transaction) Amount() int64 { return t.amount }
func (t *Transaction) Fee() int64 { return t.fee }
func (t *Transaction) NetAmount() int64 { return t.netAmount }
func (t *Transaction) SenderAccountID() uint { return t.sender }
func (t *Transaction) Description() string { return t.description }
func (t *Transaction) CreatedAt() time.Time { return t.createdAt }

// ReceiverAccountID returns the receiving account, false for withdrawals
func (t *Transaction) ReceiverAccountID() (uint, bool) {
	if t.receiver == nil {
		return 0, false
	}
	return *t.receiver, true
}

// TransactionView is the JSON shape of a transaction
type TransactionView struct {
	Reference         uuid.UUID         `json:"reference"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	Amount            int64             `json:"amount"`
	Fee               int64             `json:"fee"`
	NetAmount         int64             `json:"net_amount"`
	SenderAccountID   uint              `json:"sender_account_id"`
	ReceiverAccountID *uint             `json:"receiver_account_id"`
	Description       string            `json:"description"`
	CreatedAt         time.Time         `json:"created_at"`
}

// View returns a copy of the record suitable for encoding
func (t *Transaction) View() TransactionView {
	v := TransactionView{
		Reference:       t.reference,
		Type:            t.txType,
		Status:          t.status,
		Amount:          t.amount,
		Fee:             t.fee,
		NetAmount:       t.netAmount,
		SenderAccountID: t.sender,
		Description:     t.description,
		CreatedAt:       t.createdAt,
	}
	if id, ok := t.ReceiverAccountID(); ok {
		v.ReceiverAccountID = &id
	}
	return v
}
