package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/config"
	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/handler"
	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/service"
)

// Setup wires the API routes. The server is API-only; the browser client
// is served elsewhere.
func Setup(cfg *config.Config, db *gorm.DB, rates *fx.Table, settler *service.Settler, serial *service.SerialGen) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	wallets := service.NewWalletService(db, settler, serial, rates)
	members := service.NewMemberService(db)
	goals := service.NewGoalService(db)
	insights := service.NewInsightService(db, rates, cfg.Bank.CashbackRate)

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost, cfg.Bank.BaseCurrency)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db, cfg.Security.EncryptionKey),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))
	protected.POST("/profile/currencies", handler.UpdateCurrencies(db))
	protected.POST("/profile/actor", handler.SwitchActor(db))

	walletHandler := handler.NewWalletHandler(db, wallets, members, insights, rates)
	protected.GET("/wallets", walletHandler.ListWallets)
	protected.POST("/wallets/deposit", walletHandler.Deposit)
	protected.POST("/wallets/withdraw", walletHandler.Withdraw)
	protected.POST("/pay", walletHandler.Pay)
	protected.POST("/fx/convert", walletHandler.ConvertFx)
	protected.GET("/fx/rates", walletHandler.ListRates)
	protected.GET("/transactions", walletHandler.ListTransactions)
	protected.POST("/reset", walletHandler.Reset)

	memberHandler := handler.NewMemberHandler(members)
	protected.POST("/members", memberHandler.Add)
	protected.GET("/members", memberHandler.List)
	protected.DELETE("/members/:id", memberHandler.Delete)
	protected.POST("/members/:id/limits", memberHandler.SetLimits)
	protected.POST("/members/:id/fund", walletHandler.FundMember)
	protected.POST("/members/:id/freeze", memberHandler.Freeze)
	protected.POST("/members/:id/unfreeze", memberHandler.Unfreeze)
	protected.GET("/members/:id/freeze", memberHandler.FreezeStatus)

	goalHandler := handler.NewGoalHandler(goals, insights)
	protected.POST("/goals", goalHandler.Create)
	protected.GET("/goals", goalHandler.List)
	protected.GET("/goals/:id/projection", goalHandler.Projection)
	protected.POST("/goals/:id/contribute", goalHandler.Contribute)
	protected.DELETE("/goals/:id", goalHandler.Delete)

	insightHandler := handler.NewInsightHandler(insights, cfg.Bank.AlertDisplaySec)
	protected.GET("/insights/snapshot", insightHandler.Snapshot)
	protected.GET("/insights/coach", insightHandler.Coach)
	protected.GET("/insights/alerts", insightHandler.Alerts)
	protected.GET("/insights/history", insightHandler.History)

	backupHandler := handler.NewBackupHandler(db, cfg.Security.EncryptionKey, cfg.Backup.Dir)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	exportHandler := handler.NewExportHandler(db, insights)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
