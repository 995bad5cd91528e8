package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/audit"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/config"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/handlers"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/middleware"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
	ucAppointment "github.com/BruksfildServices01/sacrament-scheduler/internal/usecase/appointment"
	ucSchedule "github.com/BruksfildServices01/sacrament-scheduler/internal/usecase/schedule"
)

// Deps carries the singletons built in main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Payments domain.PaymentSessionBridge
	Locker   domain.Locker
	Store    domain.ObjectStore
	Events   notify.Emitter
	Audit    *audit.Dispatcher
	AuditLog *audit.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger(d.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	submitUC := ucAppointment.NewSubmitApplication(
		d.Repo,
		d.Payments,
		d.Events,
		d.Clock,
		d.Config.PaymentIntentTTL,
		d.Log,
	)

	confirmUC := ucAppointment.NewConfirmPayment(
		d.Repo,
		d.Payments,
		d.Locker,
		d.Events,
		d.Clock,
		d.Config.ConfirmLockTTL,
		d.Log,
	)

	updateStatusUC := ucAppointment.NewUpdateStatus(
		d.Repo,
		d.Audit,
		d.Events,
		d.Clock,
		d.Log,
	)

	listUC := ucAppointment.NewListAppointments(d.Repo)
	availabilityUC := ucAppointment.NewGetAvailability(d.Repo)
	requirementsUC := ucAppointment.NewAttachRequirement(
		d.Repo,
		d.Store,
		storage.Normalize,
		d.Log,
	)

	occupiedUC := ucSchedule.NewListOccupiedRanges(d.Repo)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(
		submitUC,
		confirmUC,
		listUC,
		availabilityUC,
		requirementsUC,
		d.Log,
	)
	staffHandler := handlers.NewStaffHandler(updateStatusUC, listUC, d.Log)
	scheduleHandler := handlers.NewScheduleHandler(occupiedUC, d.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditLog, d.Log)
	publicHandler := handlers.NewPublicHandler(d.DB)
	meHandler := handlers.NewMeHandler(d.DB)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		public := api.Group("/churches/:churchID")
		{
			public.GET("/services", publicHandler.ListServices)
			public.GET("/services/:serviceID/availability", bookingHandler.Availability)
		}

		// ------------------------------
		// 💳 PAYMENTS
		// ------------------------------
		api.GET("/payments/:sessionID/confirm", bookingHandler.Confirm)
		api.POST("/payments/webhook", bookingHandler.Webhook)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Config.JWTSecret))
		{
			secured.POST("/churches/:churchID/appointments", bookingHandler.Submit)

			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/appointments", bookingHandler.MyAppointments)
			secured.GET("/me/notifications", meHandler.Notifications)
			secured.PATCH("/me/notifications/:id/read", meHandler.MarkNotificationRead)

			secured.POST("/appointments/:id/requirements", bookingHandler.UploadRequirement)

			// ------------------------------
			// STAFF
			// ------------------------------
			staff := secured.Group("/staff")
			staff.Use(middleware.RequireStaff())
			{
				staff.GET("/appointments", staffHandler.List)
				staff.PATCH("/appointments/status", staffHandler.BulkUpdateStatus)
				staff.PATCH("/appointments/:id/status", staffHandler.UpdateStatus)

				staff.GET("/churches/:churchID/schedules/occupied", scheduleHandler.Occupied)

				staff.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
