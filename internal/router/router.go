package router

import (
	"github.com/ferrara94/CashCard-Microservice/internal/auth"
	"github.com/ferrara94/CashCard-Microservice/internal/config"
	"github.com/ferrara94/CashCard-Microservice/internal/gateway"
	"github.com/ferrara94/CashCard-Microservice/internal/handler"
	"github.com/ferrara94/CashCard-Microservice/internal/middleware"
	"github.com/ferrara94/CashCard-Microservice/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter builds the Gin engine and the explicit route table.
// Everything under /cashcards sits behind the Basic-auth gate and the audit
// middleware; the /userservice shim is only mounted when a user-service
// client is configured.
func SetupRouter(cfg *config.Config, db *gorm.DB, credentials *auth.Store, userService gateway.UserServiceClient) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	repo := repository.NewCashCardRepository(db)
	cardHandler := handler.NewCashCardHandler(repo, cfg.App.PageSize)
	exportHandler := handler.NewExportHandler(repo)

	cards := r.Group("/cashcards")
	cards.Use(
		middleware.BasicAuth(credentials, auth.RoleCardOwner),
		middleware.Audit(db),
	)

	cards.GET("", cardHandler.List)
	cards.POST("", cardHandler.Create)
	cards.GET("/:id", cardHandler.FindByID)
	cards.PUT("/:id", cardHandler.Update)
	cards.DELETE("/:id", cardHandler.Delete)

	cards.GET("/export/csv", exportHandler.CSV)
	cards.GET("/export/xlsx", exportHandler.XLSX)

	if userService != nil {
		gatewayHandler := handler.NewGatewayHandler(userService)
		users := r.Group("/userservice")
		users.GET("/users/:id", gatewayHandler.GetUser)
		users.POST("/users/:id", gatewayHandler.CreateUser)
	}

	return r
}
