package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-sync/core/loader"
	"event-sync/core/logger"
	"event-sync/core/middleware/auth"
	"event-sync/core/middleware/rayid"
	"event-sync/core/scheduler"
	"event-sync/feature/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "event-sync/docs/swagger"
)

// @title Event Sync API
// @version 1.0
// @description Operations API for the event catalog synchronization.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler and the ops API",
	Long:  `Runs synchronization passes on the configured schedules and serves the ops API.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger and mapping store
		d, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := d.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Sync service
		svc, err := d.service(ctx)
		if err != nil {
			logg.Fatal("Failed to set up sync", zap.Error(err))
		}

		// 3. Schedules
		sched := scheduler.New(logg)
		if err := sched.Add("sync", d.cfg.Schedule.Cron, svc.ScheduledJob(events.Options{})); err != nil {
			logg.Fatal("Failed to schedule sync", zap.Error(err))
		}
		if err := sched.Add("full-sync", d.cfg.Schedule.FullCron, svc.ScheduledJob(events.Options{Full: true})); err != nil {
			logg.Fatal("Failed to schedule full sync", zap.Error(err))
		}

		// 4. Fiber app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(events.NewFeature(svc))

		// RayID first so every log line of a request carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public
		if d.cfg.Server.Swagger {
			app.Get("/swagger/*", swagger.HandlerDefault)
		}

		app.Use(auth.New(auth.Config{ApiKey: d.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start
		sched.Start()
		logg.Info("Scheduler started", zap.Int("jobs", sched.Len()))

		go func() {
			logg.Info("Starting server", zap.String("address", d.cfg.Server.Address()))
			if err := app.Listen(d.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful shutdown, waiting for a running pass
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")
		_ = app.Shutdown()

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			logg.Warn("Scheduler did not stop in time", zap.Error(err))
		}
		if err := svc.Wait(stopCtx); err != nil {
			logg.Warn("Sync still running at shutdown", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
