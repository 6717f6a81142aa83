package main

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/safespace/safespace_backend/config"
	"github.com/safespace/safespace_backend/controllers"
	"github.com/safespace/safespace_backend/middleware"
	"github.com/safespace/safespace_backend/models"
	"github.com/safespace/safespace_backend/repositories"
	"github.com/safespace/safespace_backend/routes"
	"github.com/safespace/safespace_backend/rules"
	"github.com/safespace/safespace_backend/scheduler"
	"github.com/safespace/safespace_backend/services"
	"github.com/safespace/safespace_backend/triggers"
	"github.com/safespace/safespace_backend/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx := context.Background()

	// Initialize Firebase and its Firestore / FCM clients
	app := config.InitFirebase(cfg.FirebaseProjectID)
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("error initializing firestore client: %v", err)
	}
	defer firestoreClient.Close()

	pushService, err := services.NewPushService(ctx, app)
	if err != nil {
		log.Fatalf("error initializing push service: %v", err)
	}
	emailService := services.NewEmailService(cfg)
	if !emailService.Enabled() {
		log.Println("Warning: SENDGRID_API_KEY not set; email delivery disabled")
	}

	// Optional Redis-backed guard against concurrent duplicate alerts
	var alertGuard rules.AlertGuard
	if redisClient := config.ConnectRedis(cfg); redisClient != nil {
		alertGuard = services.NewRedisAlertGuard(redisClient)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(firestoreClient)
	notificationRepo := repositories.NewNotificationRepository(firestoreClient)
	appointmentRepo := repositories.NewAppointmentRepository(firestoreClient)
	messageRepo := repositories.NewMessageRepository(firestoreClient)

	// Rule evaluators
	appointmentRules := rules.NewAppointmentRules(userRepo, notificationRepo, pushService, emailService)
	readingRules := rules.NewReadingRules(userRepo, notificationRepo, pushService, alertGuard, cfg.AlertCooldown)
	messageRules := rules.NewMessageRules(userRepo, notificationRepo, pushService)
	digestRules := rules.NewDigestRules(userRepo, notificationRepo, appointmentRepo, messageRepo, pushService, emailService, cfg.DigestMinUnread)
	lifecycleRules := rules.NewLifecycleRules(appointmentRepo, cfg.StalePendingAge)

	// Periodic sweeps, all evaluated in Asia/Amman
	sched := scheduler.New(utils.Amman())
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"unread-notification-digest", cfg.Schedules.NotificationDigest, digestRules.UnreadNotificationDigest},
		{"unread-message-digest", cfg.Schedules.MessageDigest, digestRules.UnreadMessageDigest},
		{"daily-symptom-reminder", cfg.Schedules.SymptomReminder, digestRules.DailySymptomReminder},
		{"appointment-reminder", cfg.Schedules.AppointmentReminder, digestRules.AppointmentReminder},
		{"stale-pending-cleanup", cfg.Schedules.StalePendingCleanup, lifecycleRules.CleanupStalePending},
		{"auto-complete", cfg.Schedules.AutoComplete, lifecycleRules.AutoCompletePast},
	}
	for _, job := range jobs {
		if err := sched.Register(job.name, job.spec, job.run); err != nil {
			log.Fatalf("scheduler error: %v", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Firestore change watchers feeding the rule evaluators
	watcher := triggers.NewWatcher(firestoreClient, triggers.Handlers{
		AppointmentCreated: appointmentRules.OnCreated,
		AppointmentUpdated: []func(context.Context, *models.Appointment, *models.Appointment) error{
			appointmentRules.OnUpdated,
			appointmentRules.OnRescheduleRequested,
			appointmentRules.OnRequestedPending,
		},
		ReadingCreated: readingRules.OnCreated,
		MessageCreated: messageRules.OnCreated,
	})
	watcher.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	// Middleware
	rateLimiter := middleware.NewRateLimiter()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	routes.RegisterMainRoutes(e, controllers.NewJobController(sched), cfg.JobToken)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
