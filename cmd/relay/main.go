package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"reminder_relay/internal/app"
	"reminder_relay/internal/domain/channel"
	domainrelay "reminder_relay/internal/domain/relay"
	"reminder_relay/internal/infra/config"
	"reminder_relay/internal/infra/credential"
	idb "reminder_relay/internal/infra/database"
	"reminder_relay/internal/infra/httpapi"
	"reminder_relay/internal/infra/logger"
	"reminder_relay/internal/infra/mailer"
	"reminder_relay/internal/infra/relay"
	"reminder_relay/internal/infra/runtime"
	"reminder_relay/internal/infra/scheduler"
	"reminder_relay/internal/infra/telegram"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/retry"
	"gopkg.in/telebot.v3"
)

const (
	relayBuffer     = 64
	shutdownTimeout = 10 * time.Second
)

func main() {
	fmt.Println("Reminder relay starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.Infof("Configuration loaded. Environment: %s, Owning package: %s", cfg.Environment, cfg.OwningPackage)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings database
	db, err := idb.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	settingsRepo := idb.NewSettingsRepository(db, cfg.SettingsKeyPrefix)
	mainLogger.WithField("driver", cfg.DatabaseDriver).Info("Settings database ready.")

	// Mail sender
	var secrets *credential.Store
	if cfg.SMTP.SenderPassword == "" {
		secrets, err = credential.Open(cfg.KeyringService)
		if err != nil {
			mainLogger.Fatalf("FATAL: Could not open keyring: %v", err)
		}
	}
	password, err := credential.ResolvePassword(cfg.SMTP.SenderPassword, secrets)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not resolve SMTP password: %v", err)
	}
	smtpSender := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.SenderEmail, password)
	mailQueue := mailer.NewQueue(smtpSender, cfg.MailQueueSize, retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}, logger.Component("mailer"))
	mailQueue.Start(ctx)

	// Relay pipeline
	bus := relay.NewDispatcher[domainrelay.NotificationEvent](domainrelay.EmailIntentChannel, relayBuffer, logger.Component("relay"))
	worker := app.NewDeliveryWorker(settingsRepo, mailQueue, logger.Component("delivery_worker"))
	if _, err := bus.Subscribe(worker.HandleEmailIntent); err != nil {
		mainLogger.Fatalf("FATAL: Could not subscribe delivery worker: %v", err)
	}
	observer := app.NewNotificationObserver(cfg.OwningPackage, bus, logger.Component("observer"))
	methods := app.NewMethodChannelHandler(bus, logger.Component("method_channel"))
	mainLogger.Info("Relay pipeline initialized.")

	// Telegram bot (optional)
	var bot *telebot.Bot
	var presence app.Presence = app.LogPresence{Logger: logger.Component("presence")}
	if cfg.TelegramToken != "" {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := logger.Component("telegram").WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.Fatalf("FATAL: Could not create Telegram bot: %v", err)
		}
		presence = telegram.NewPresence(telegram.NewTelebotAdapter(bot), cfg.AdminTelegramID, logger.Component("presence"))
	}

	// Reboot rescheduler
	var guard app.RunGuard = app.NewMemoryGuard()
	if cfg.RunGuard == "database" {
		guard = idb.NewLeaseGuard(db, "reschedule", cfg.RunGuardLease)
	}
	engines := runtime.NewCache()
	newEngine := func() (channel.Invoker, error) {
		return runtime.NewClient(cfg.RuntimeURL, cfg.RuntimeChannel), nil
	}
	rescheduler := app.NewRescheduler(guard, engines, runtime.DefaultEngine, newEngine, presence, logger.Component("rescheduler"))

	// HTTP surface
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Observer:     observer,
		Methods:      methods,
		SystemEvents: rescheduler,
		Settings:     settingsRepo,
	}, logger.Component("http"))
	server := httpapi.NewServer(cfg.HTTPAddr, router, logger.Component("http"))
	server.Start()

	sched := scheduler.NewRescheduleScheduler(rescheduler, logger.Component("scheduler"), cfg.CronSpecReschedule, cfg.RescheduleOnStart)
	if err := sched.Start(ctx); err != nil {
		mainLogger.Fatalf("FATAL: Could not start scheduler: %v", err)
	}

	if bot != nil {
		telegram.RegisterCommands(ctx, bot, methods, rescheduler, cfg.AdminTelegramID, logger.Component("telegram"))
		go bot.Start()
		mainLogger.Info("Telegram command surface started.")
	}

	mainLogger.Info("Application setup complete.")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if bot != nil {
		bot.Stop()
	}

	rescheduler.Wait()
	bus.Close()       // drains pending intents into the mail queue
	mailQueue.Close() // drains pending mail
	mainLogger.Info("Application shut down gracefully.")
}
