package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "household-tasks.com/household-tasks/internal/configs"
	"household-tasks.com/household-tasks/internal/dedupe"
	"household-tasks.com/household-tasks/internal/gateway"
	httpapi "household-tasks.com/household-tasks/internal/http"
	repository "household-tasks.com/household-tasks/internal/repositories"
	"household-tasks.com/household-tasks/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and reminder scheduler",
	Long:  "Starts the task API, the delivery webhook receiver and the background reminder loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.New(cfg.DatabaseDSN)

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()

		taskRepo := repository.NewTaskRepository(database)
		userRepo := repository.NewUserRepository(database)
		notifRepo := repository.NewNotificationRepository(database)

		gatewayClient := gateway.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		marker := dedupe.NewRedisMarker(redisClient, cfg.DedupeKeyPrefix)

		dispatchService := services.NewDispatchService(
			gatewayClient,
			userRepo,
			notifRepo,
			marker,
			cfg.TwilioPhoneNumber,
			cfg.TwilioWhatsAppNumber,
			cfg.BaseURL,
			cfg.TimeZone,
		)
		reminderService := services.NewReminderService(
			taskRepo,
			userRepo,
			notifRepo,
			dispatchService,
			cfg.TimeZone,
			cfg.ReminderWindow,
			cfg.StaleAfter,
		)
		seriesService := services.NewSeriesService(taskRepo, cfg.RecurrenceMonths)
		taskService := services.NewTaskService(taskRepo, seriesService)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scheduler := services.NewSchedulerService(cfg.TimeZone)
		if _, err := scheduler.ScheduleInterval(cfg.TickInterval, func() {
			tickCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			reminderService.RunTick(tickCtx)
		}); err != nil {
			log.Fatalf("schedule reminder loop: %v", err)
		}
		scheduler.Start()

		e := echo.New()
		handler := httpapi.NewHandler(taskService, dispatchService, userRepo, notifRepo)
		httpapi.Register(e, handler, cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)

		scheduler.Stop()

		log.Println("HTTP server and reminder scheduler shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
