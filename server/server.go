package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pocketbook/alert"
	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/consts"
	"pocketbook/ledger"
	"pocketbook/user"
)

const (
	loggerKey = "logger"
	ownerKey  = "owner"
)

// Stores bundles every bucket-backed store the API serves.
type Stores struct {
	Users      *user.Store
	Categories *category.Store
	Ledger     *ledger.Store
	Budgets    *budget.Store
	Alerts     *alert.Store
}

// Run serves the API on addr until the listener fails.
func Run(addr string, stores Stores, logger *zap.Logger) error {
	engine := newEngine(stores, logger)
	logger.Info("Starting server", zap.String("addr", addr))
	return engine.Run(addr)
}

func newEngine(stores Stores, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		recovery(logger, true),
	)

	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(loggerKey, logger)
	})

	auth := newAuthenticator(stores.Users)
	setupAPI(api, stores, auth)
	return engine
}

func setupAPI(router gin.IRouter, stores Stores, auth *authenticator) {
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{
			"Version": consts.Version,
		})
	})
	router.POST("/register", registerUser(stores, auth))
	router.POST("/signin", signIn(auth))

	authed := router.Group("", requireAuth(auth))
	authed.POST("/signout", signOut(auth))
	authed.GET("/profile", getProfile(stores.Users))
	authed.PUT("/profile", updateProfile(stores.Users))
	authed.DELETE("/account", deleteAccount(stores, auth))

	authed.GET("/categories", getCategories(stores.Categories))
	authed.POST("/categories", addCategory(stores.Categories))

	authed.GET("/transactions", getTransactions(stores.Ledger))
	authed.POST("/transactions", addTransaction(stores.Categories, stores.Ledger))
	authed.DELETE("/transactions/:id", removeTransaction(stores.Ledger))
	authed.GET("/totals", getTotals(stores.Ledger))

	authed.GET("/budgets", getBudgets(stores.Ledger, stores.Budgets))
	authed.POST("/budgets", setBudget(stores.Categories, stores.Budgets))

	authed.GET("/alerts", getAlerts(stores.Alerts))
	authed.POST("/alerts/:id/read", markAlertRead(stores.Alerts))
}
