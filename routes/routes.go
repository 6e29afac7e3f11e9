package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/the-y0gi/Go-Apply-sub000/config"
	"github.com/the-y0gi/Go-Apply-sub000/controllers"
	"github.com/the-y0gi/Go-Apply-sub000/gateway"
	"github.com/the-y0gi/Go-Apply-sub000/middleware"
	"github.com/the-y0gi/Go-Apply-sub000/services"
	"github.com/the-y0gi/Go-Apply-sub000/ws"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	stores := services.NewGormStores(db)
	notifier := services.NewNotificationService(db)
	gw := gateway.NewRazorpayClient(config.GetRazorpayConfig())

	apps := services.NewApplicationService(stores.Applications, stores.Profiles, stores.Catalog, notifier)
	evaluator := services.NewSubmissionEvaluator(stores.Applications, notifier)
	docs := services.NewDocumentService(apps, stores.Documents, evaluator)
	payments := services.NewPaymentService(stores.Payments, stores.Applications, gw, notifier)
	verifier := services.NewPaymentVerifier(stores.Payments, apps, evaluator, gw, notifier)

	appCtl := &controllers.ApplicationController{Apps: apps, Docs: docs}
	payCtl := &controllers.PaymentController{Payments: payments, Verifier: verifier}
	notiCtl := &controllers.NotificationController{Notifications: notifier}

	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	// ---------------- APPLICATIONS ----------------
	applications := api.Group("/applications")
	applications.Use(middleware.RequireIdentity())
	{
		applications.POST("/", appCtl.Create)
		applications.GET("/", appCtl.List)
		applications.GET("/:id", appCtl.Get)
		applications.DELETE("/:id", appCtl.Delete)

		applications.GET("/:id/documents/status", appCtl.DocumentStatus)
		applications.POST("/:id/documents/complete", appCtl.CompleteDocuments)
	}

	// ---------------- PAYMENTS ----------------
	payment := api.Group("/payments")
	{
		// Gateway callback, authenticated by signature rather than session.
		payment.POST("/verify", payCtl.Verify)

		paymentProtected := payment.Group("/")
		paymentProtected.Use(middleware.RequireIdentity())
		{
			paymentProtected.POST("/order", payCtl.CreateOrder)
			paymentProtected.GET("/history", payCtl.History)
		}
	}

	// ---------------- NOTIFICATIONS ----------------
	notifications := api.Group("/notifications")
	notifications.Use(middleware.RequireIdentity())
	{
		notifications.GET("/me", notiCtl.GetMine)
		notifications.PUT("/:id/read", notiCtl.MarkRead)
		notifications.PUT("/read-all", notiCtl.MarkAllRead)
	}

	// ---------------- ADMIN ----------------
	admin := api.Group("/admin")
	admin.Use(middleware.RequireIdentity(), middleware.RequireAdmin())
	{
		admin.PATCH("/applications/:id/progress", appCtl.OverrideProgress)
		admin.POST("/payments/:id/refund", payCtl.Refund)
	}

	// ---------------- WebSockets ----------------
	r.GET("/ws/notifications", func(c *gin.Context) {
		ws.HandleNotificationWS(c.Writer, c.Request)
	})
	r.GET("/ws/badge", func(c *gin.Context) {
		ws.HandleBadgeWS(c.Writer, c.Request)
	})
}
