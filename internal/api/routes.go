package api

import (
	"money_transfer/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRoutes mounts the wallet and admin routes on r
func RegisterRoutes(r *gin.Engine, d *Deps, jwtSecret string) {
	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	walletGroup.Use(middleware.JWTAuthMiddleware(jwtSecret))
	walletGroup.POST("", CreateAccountHandler(d))                         // Create account endpoint
	walletGroup.GET("", GetWalletHandler(d))                              // Balance endpoint
	walletGroup.POST("/deposit", DepositHandler(d))                       // Deposit endpoint
	walletGroup.POST("/withdraw", WithdrawHandler(d))                     // Withdrawal endpoint
	walletGroup.POST("/transfer", TransferHandler(d))                     // Transfer endpoint
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(d))     // Transaction history endpoint
	walletGroup.GET("/transactions/:reference", GetTransactionHandler(d)) // Single transaction endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(jwtSecret), middleware.AdminOnlyMiddleware(d.Accounts.Store()))
	adminGroup.POST("/users/:id/account", OpenAccountHandler(d))          // Open account
	adminGroup.POST("/users/:id/activate", ActivateAccountHandler(d))     // Activate account
	adminGroup.POST("/users/:id/suspend", SuspendAccountHandler(d))       // Suspend account
	adminGroup.POST("/users/:id/reactivate", ReactivateAccountHandler(d)) // Reactivate account
	adminGroup.POST("/users/:id/deposit", AdminCreditHandler(d))          // Admin credit
	adminGroup.GET("/platform", PlatformHandler(d))                       // Platform summary
	adminGroup.PUT("/platform/fee-rate", UpdateFeeRateHandler(d))         // Fee rate update
}
