package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/hariom18august-ui/Markit/internal/handler"
	"github.com/hariom18august-ui/Markit/internal/middleware"
	"github.com/hariom18august-ui/Markit/internal/notify"
	"github.com/hariom18august-ui/Markit/internal/service"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/internal/store"
	"github.com/hariom18august-ui/Markit/pkg/clock"
	"github.com/hariom18august-ui/Markit/pkg/config"
	"github.com/hariom18august-ui/Markit/pkg/database"
	"github.com/hariom18august-ui/Markit/pkg/logger"
	corsmiddleware "github.com/hariom18august-ui/Markit/pkg/middleware/cors"
	reqidmiddleware "github.com/hariom18august-ui/Markit/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	blobs, err := buildStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init store", "driver", cfg.Store.Driver, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appState := state.New(blobs, logr)
	clk := clock.New()
	validate := validator.New()
	metrics := service.NewMetricsService()
	notifier := notify.NewSlotNotifier(logr)

	resolver := service.NewScheduleResolver(logr)
	attendance := service.NewAttendanceService(appState, resolver, clk, validate, logr)
	timetables := service.NewTimetableService(appState, validate, logr)
	settings := service.NewSettingsService(appState, validate, logr)
	extraction := service.NewExtractionService(service.NewMockExtractor(clk), appState, cfg.Extraction.Timeout, metrics, logr)
	exports := service.NewExportService(attendance, clk, logr)

	scheduler := service.NewReminderScheduler(appState, resolver, notifier, clk, metrics, logr)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		timetable:    handler.NewTimetableHandler(extraction, timetables),
		schedule:     handler.NewScheduleHandler(appState, resolver, clk),
		attendance:   handler.NewAttendanceHandler(attendance, exports),
		settings:     handler.NewSettingsHandler(settings, notifier),
		notification: handler.NewNotificationHandler(notifier, attendance, timetables),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown failed", "error", err)
	}
}

type routeDeps struct {
	timetable    *handler.TimetableHandler
	schedule     *handler.ScheduleHandler
	attendance   *handler.AttendanceHandler
	settings     *handler.SettingsHandler
	notification *handler.NotificationHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	api.POST("/timetable/extract", deps.timetable.Extract)
	api.GET("/timetable", deps.timetable.Get)
	api.DELETE("/timetable", deps.timetable.Reset)
	api.POST("/timetable/holidays", deps.timetable.AddHoliday)
	api.DELETE("/timetable/holidays/:date", deps.timetable.RemoveHoliday)
	api.POST("/timetable/extra-classes", deps.timetable.AddExtraClass)
	api.PATCH("/timetable/extra-classes/:id", deps.timetable.UpdateExtraClass)
	api.DELETE("/timetable/extra-classes/:id", deps.timetable.DeleteExtraClass)
	api.POST("/timetable/exams", deps.timetable.AddExam)
	api.PATCH("/timetable/exams/:id", deps.timetable.UpdateExam)
	api.DELETE("/timetable/exams/:id", deps.timetable.DeleteExam)
	api.PATCH("/timetable/days/:day/classes/:id", deps.timetable.UpdateClass)
	api.DELETE("/timetable/days/:day/classes/:id", deps.timetable.DeleteClass)

	api.GET("/schedule/day", deps.schedule.Day)
	api.GET("/schedule/month", deps.schedule.Month)

	api.POST("/attendance", deps.attendance.Mark)
	api.POST("/attendance/mark-day", deps.attendance.MarkDay)
	api.GET("/attendance/status", deps.attendance.Status)
	api.GET("/attendance/stats", deps.attendance.Stats)
	api.GET("/attendance/history", deps.attendance.History)
	api.GET("/attendance/export", deps.attendance.Export)

	api.GET("/settings", deps.settings.Get)
	api.PUT("/settings", deps.settings.Update)
	api.POST("/data/clear", deps.settings.ClearData)

	api.GET("/notifications/current", deps.notification.Current)
	api.POST("/notifications/dismiss", deps.notification.Dismiss)
	api.POST("/notifications/act", deps.notification.Act)
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		return store.NewFileStore(cfg.Store.Dir)
	case config.StoreDriverMemory:
		return store.NewMemory(), nil
	case config.StoreDriverRedis:
		return store.NewRedisStore(cfg.Redis)
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlStore := store.NewSQLStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return sqlStore, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
