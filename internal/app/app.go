package app

import (
	"net/http"

	"adbond/internal/config"
	"adbond/internal/middleware"
	"adbond/internal/modules/auth"
	"adbond/internal/modules/entity"
	"adbond/internal/modules/provisioning"
	"adbond/internal/modules/verification"
	"adbond/internal/notification"
	jwtsvc "adbond/internal/pkg/jwt"
	"adbond/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewTransport picks the mail transport for cfg.MailDriver.
func NewTransport(cfg *config.Config, log *zap.Logger) notification.Transport {
	if cfg.MailDriver == config.MailDriverSMTP {
		return notification.NewSMTPTransport(notification.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			From:      cfg.SMTP.From,
			TLSPolicy: cfg.SMTP.TLSPolicy,
			Timeout:   cfg.SMTP.Timeout,
		})
	}
	return notification.NewLogTransport(log.Named("mail"))
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, transport notification.Transport, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	entityRepo := repository.NewEntityRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	notifier := notification.NewEmailNotifier(transport, notification.Options{
		AdminEmail:      cfg.AdminNotificationEmail,
		LoginURL:        cfg.FrontendURL + "/login",
		AdminURL:        cfg.FrontendURL + "/admin/entities/pending",
		TempPasswordTTL: cfg.TempPasswordTTL,
	}, log.Named("notification"))

	provisioner := provisioning.NewProvisioner(userRepo, cfg.TempPasswordTTL)

	authHandler := auth.NewHandler(auth.NewService(userRepo, tokens))
	entityHandler := entity.NewHandler(entity.NewService(entityRepo, notifier, log.Named("entity")))
	verificationHandler := verification.NewHandler(
		verification.NewService(entityRepo, provisioner, notifier, log.Named("verification")),
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(log.Named("http")))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authHandler.RegisterPublicRoutes(api)
		entityHandler.RegisterPublicRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)

			admin := protected.Group("")
			admin.Use(middleware.AdminOnly())
			{
				entityHandler.RegisterAdminRoutes(admin)
				verificationHandler.RegisterRoutes(admin)
			}
		}
	}

	return r
}
