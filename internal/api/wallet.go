package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTL

	"money_transfer/internal/account" // Account manager
	"money_transfer/internal/domain"  // Importing domain models
	"money_transfer/internal/engine"  // Transaction engine
	"money_transfer/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Transaction references
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Deps are the collaborators the handlers need
type Deps struct {
	Engine   *engine.Engine   // Executes monetary operations
	Accounts *account.Manager // Account lifecycle and lookups
	Redis    *redis.Client    // Response cache, nil disables caching
	CacheTTL time.Duration    // How long cached responses live
}

// AmountRequest is the body of deposit and withdrawal requests
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"` // Amount in minor units
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToEmail string `json:"to_email" binding:"required,email"` // Receiver's email
	Amount  int64  `json:"amount" binding:"required,gt=0"`    // Transfer amount
}

// currentUser reads the authenticated user's ID set by the JWT middleware
func currentUser(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}

// invalidate drops the cached responses of the given users
func (d *Deps) invalidate(ctx context.Context, userIDs ...uint) {
	if err := utils.InvalidateUser(ctx, d.Redis, userIDs...); err != nil {
		logrus.WithFields(logrus.Fields{"users": userIDs, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

// CreateAccountHandler opens the authenticated user's account (one per user).
// It starts inactive until an administrator activates the user.
func CreateAccountHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		createAccount(c, d, userID)
	}
}

func createAccount(c *gin.Context, d *Deps, userID uint) {
	a, err := d.Accounts.CreateAccount(c.Request.Context(), domain.UserOwner(userID))
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	d.invalidate(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created",
		"wallet":  BalanceResponse{Balance: a.Balance, IsActive: a.IsActive},
	})
}

// DepositHandler credits the authenticated user's account
func DepositHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		txn, err := d.Engine.Deposit(c.Request.Context(), domain.UserOwner(userID), req.Amount)
		if err != nil {
			respondError(c, err, "Deposit failed")
			return
		}
		d.invalidate(c.Request.Context(), userID)
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful", "transaction": txn.View()})
	}
}

// WithdrawHandler takes money out of the authenticated user's account. The
// caller is expected to have passed the OTP confirmation step already.
func WithdrawHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		txn, err := d.Engine.Withdraw(c.Request.Context(), domain.UserOwner(userID), req.Amount)
		if err != nil {
			respondError(c, err, "Withdrawal failed")
			return
		}
		d.invalidate(c.Request.Context(), userID)
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful", "transaction": txn.View()})
	}
}

// TransferHandler allows a user to transfer funds to another user's account
func TransferHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		txn, err := d.Engine.TransferToEmail(ctx, domain.UserOwner(userID), req.ToEmail, req.Amount)
		if err != nil {
			respondError(c, err, "Transfer failed")
			return
		}
		users := []uint{userID}
		if receiverID, ok := txn.ReceiverAccountID(); ok {
			if a, err := d.Accounts.Store().WithContext(ctx).FindAccount(receiverID); err == nil {
				users = append(users, a.OwnerID) // Receiver's cache is stale too
			}
		}
		d.invalidate(ctx, users...)
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "transaction": txn.View()})
	}
}

// BalanceResponse is the cached body of GET /wallet
type BalanceResponse struct {
	Balance  int64 `json:"balance"`   // Current balance
	IsActive bool  `json:"is_active"` // Account state
}

// GetWalletHandler returns the balance of the authenticated user
func GetWalletHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.BalanceKey(userID)
		var resp BalanceResponse
		if found, err := utils.GetCache(ctx, d.Redis, cacheKey, &resp); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallet": resp, "cached": true})
			return
		}
		a, found, err := d.Accounts.FindAccount(ctx, domain.UserOwner(userID))
		if err != nil {
			respondError(c, err, "Failed to load account")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		resp = BalanceResponse{Balance: a.Balance, IsActive: a.IsActive}
		_ = utils.SetCache(ctx, d.Redis, cacheKey, resp, d.CacheTTL) // Cache the balance
		c.JSON(http.StatusOK, gin.H{"wallet": resp, "cached": false})
	}
}

// GetTransactionHistoryHandler returns the user's latest transactions
func GetTransactionHistoryHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		limit := engine.DefaultListLimit
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
				limit = v // Set limit if valid
			}
		}
		ctx := c.Request.Context()
		cacheKey := utils.HistoryKey(userID, limit)
		var cached []domain.TransactionView
		if found, err := utils.GetCache(ctx, d.Redis, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
			return
		}
		txs, err := d.Engine.ListTransactions(ctx, domain.UserOwner(userID), limit)
		if err != nil {
			respondError(c, err, "Failed to fetch transactions")
			return
		}
		views := make([]domain.TransactionView, len(txs))
		for i, t := range txs {
			views[i] = t.View()
		}
		_ = utils.SetCache(ctx, d.Redis, cacheKey, views, d.CacheTTL)
		c.JSON(http.StatusOK, gin.H{"transactions": views, "cached": false})
	}
}

// GetTransactionHandler returns one transaction the user took part in
func GetTransactionHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		ref, err := uuid.Parse(c.Param("reference"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference"})
			return
		}
		ctx := c.Request.Context()
		txn, found := d.Engine.GetTransactionByReference(ctx, ref)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		a, owns, err := d.Accounts.FindAccount(ctx, domain.UserOwner(userID))
		if err != nil || !owns || !involves(txn, a.ID) {
			// Other users' transactions are reported as missing
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": txn.View()})
	}
}

func involves(t *domain.Transaction, accountID uint) bool {
	if t.SenderAccountID() == accountID {
		return true
	}
	id, ok := t.ReceiverAccountID()
	return ok && id == accountID
}
