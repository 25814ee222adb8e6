package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/bot"
	"github.com/Spok95/college-portal/internal/config"
	"github.com/Spok95/college-portal/internal/ctxutil"
	"github.com/Spok95/college-portal/internal/db"
	"github.com/Spok95/college-portal/internal/httpapi"
	"github.com/Spok95/college-portal/internal/jobs"
	"github.com/Spok95/college-portal/internal/logging"
	"github.com/Spok95/college-portal/internal/observability"
	"github.com/Spok95/college-portal/internal/portal"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/tg"
)

var version = "dev"

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctxutil.DefaultDBTimeout = cfg.DBTimeout

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database.DB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	store := db.New(database)

	svc := portal.New(store, logger.Named("portal"), portal.Options{
		RowLimit: cfg.ReportRowLimit,
		Report:   report.Options{Currency: cfg.CurrencySymbol, Location: cfg.Location},
	})

	api := httpapi.New(svc, database, store, logger.Named("http"))
	srv := httpapi.Start(ctx, cfg.HTTPAddr, api.Router(), logger)
	logger.Info("http started", zap.String("addr", cfg.HTTPAddr))

	var notify jobs.Notify
	botDone := make(chan struct{})
	if cfg.BotToken != "" {
		tgAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Fatal("telegram", zap.Error(err))
		}
		logger.Info("bot started", zap.String("username", tgAPI.Self.UserName))

		b := bot.New(tgAPI, svc, store, bot.Options{
			IsAdminChat: cfg.IsAdminChat,
			Currency:    cfg.CurrencySymbol,
		}, logger)

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := tgAPI.GetUpdatesChan(u)
		go func() {
			defer close(botDone)
			b.Run(ctx, updates)
		}()

		notify = func(_ context.Context, text string) {
			for _, chatID := range cfg.AdminIDs {
				_, _ = tg.Send(tgAPI, tgbotapi.NewMessage(chatID, text))
			}
		}
		go func() {
			<-ctx.Done()
			tgAPI.StopReceivingUpdates()
		}()
	} else {
		close(botDone)
	}

	runner := jobs.New(ctx, logger)
	jobs.Maintenance{
		Store:  store,
		Loc:    cfg.Location,
		Notify: notify,
	}.Schedule(runner, cfg.JobInterval)

	<-ctx.Done()
	logger.Info("shutting down")
	// база закрывается отложенно, поэтому сначала дожидаемся запросов, бота и задач
	srv.Wait()
	<-botDone
	runner.Wait()
	logger.Info("stopped")
}
