package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"money_transfer/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// SuspendRequest carries the reason recorded with a suspension
type SuspendRequest struct {
	Reason string `json:"reason"` // Free-form reason
}

// AdminCreditRequest is the body of an administrative credit
type AdminCreditRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"` // Amount to credit
	Reason string `json:"reason" binding:"required"`      // Why the credit was made
}

// FeeRateRequest is the body of a fee rate update
type FeeRateRequest struct {
	FeeRate *int `json:"fee_rate" binding:"required"` // Percentage 0-100
}

// userParam parses the :id path parameter
func userParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return uint(id), true
}

// OpenAccountHandler opens the account of a user on an administrator's behalf
func OpenAccountHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userParam(c)
		if !ok {
			return
		}
		createAccount(c, d, userID)
	}
}

// ActivateAccountHandler activates a validated user's account
func ActivateAccountHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userParam(c)
		if !ok {
			return
		}
		if err := d.Accounts.Activate(c.Request.Context(), userID); err != nil {
			respondError(c, err, "Activation failed")
			return
		}
		d.invalidate(c.Request.Context(), userID)
		c.JSON(http.StatusOK, gin.H{"message": "Account activated"})
	}
}

// SuspendAccountHandler suspends a user's account
func SuspendAccountHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userParam(c)
		if !ok {
			return
		}
		var req SuspendRequest
		_ = c.ShouldBindJSON(&req) // Reason is optional
		if err := d.Accounts.Suspend(c.Request.Context(), userID, req.Reason); err != nil {
			respondError(c, err, "Suspension failed")
			return
		}
		d.invalidate(c.Request.Context(), userID)
		c.JSON(http.StatusOK, gin.H{"message": "Account suspended"})
	}
}

// ReactivateAccountHandler lifts a suspension
func ReactivateAccountHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userParam(c)
		if !ok {
			return
		}
		if err := d.Accounts.Reactivate(c.Request.Context(), userID); err != nil {
			respondError(c, err, "Reactivation failed")
			return
		}
		d.invalidate(c.Request.Context(), userID)
		c.JSON(http.StatusOK, gin.H{"message": "Account reactivated"})
	}
}

// AdminCreditHandler credits a user's account on an administrator's behalf
func AdminCreditHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userParam(c)
		if !ok {
			return
		}
		var req AdminCreditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		adminID, _ := c.Get("userID")
		txn, err := d.Engine.AdminCredit(c.Request.Context(), domain.UserOwner(userID), req.Amount, req.Reason)
		if err != nil {
			respondError(c, err, "Credit failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id":  adminID,
			"user_id":   userID,
			"amount":    req.Amount,
			"reference": txn.Reference().String(),
		}).Info("Admin credit")
		d.invalidate(c.Request.Context(), userID)
		c.JSON(http.StatusOK, gin.H{"message": "Account credited", "transaction": txn.View()})
	}
}

// UpdateFeeRateHandler changes the platform withdrawal fee rate
func UpdateFeeRateHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FeeRateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := d.Accounts.SetFeeRate(c.Request.Context(), d.Engine.Platform(), *req.FeeRate); err != nil {
			respondError(c, err, "Failed to update fee rate")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Fee rate updated", "fee_rate": *req.FeeRate})
	}
}

// PlatformHandler reports the platform configuration and collected fees
func PlatformHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		handle := d.Engine.Platform()
		p, err := d.Accounts.Platform(ctx, handle)
		if err != nil {
			respondError(c, err, "Failed to load platform")
			return
		}
		store := d.Accounts.Store().WithContext(ctx)
		balance, err := store.Balance(handle.AccountID)
		if err != nil {
			respondError(c, err, "Failed to load platform")
			return
		}
		fees, err := store.SumTransactions(domain.TypeFee, domain.StatusSuccess)
		if err != nil {
			respondError(c, err, "Failed to load platform")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":           p.Name,    // Platform name
			"fee_rate":       p.FeeRate, // Current fee rate
			"balance":        balance,   // Fee account balance
			"fees_collected": fees,      // Sum of successful fee records
		})
	}
}
