package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"

	"medassist/api/internal/config"
	"medassist/api/internal/content"
	"medassist/api/internal/httpserver"
	"medassist/api/internal/inference"
	"medassist/api/internal/logging"
	"medassist/api/internal/store"
	"medassist/api/internal/telegram"
)

func main() {
	cfg, err := config.Load(os.Getenv("MEDASSIST_CONFIG"))
	if err != nil {
		panic(err)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.RequireBot(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres (необязателен: без него нет /history) ---
	var (
		db      *sql.DB
		history telegram.History
	)
	if cfg.DatabaseURL != "" {
		db = openDB(ctx, cfg.DatabaseURL, log)
		defer db.Close()
		repo := store.NewHistoryRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("ensure schema", zap.Error(err))
		}
		history = repo
	} else {
		log.Warn("no DATABASE_URL / POSTGRES_* set, history disabled")
	}

	catalog, err := content.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err))
	}

	engines, err := inference.FromConfig(cfg)
	if err != nil {
		log.Fatal("engines", zap.Error(err))
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal("telegram", zap.Error(err))
	}
	bot.Debug = false

	r := &telegram.Router{
		Bot:            bot,
		Engines:        engines,
		EngManager:     inference.NewManager(engines.Default()),
		Catalog:        catalog,
		History:        history,
		ContentBaseURL: cfg.ContentBaseURL,
		Timeout:        cfg.RequestTimeout,
		Log:            log,
	}

	// --- HTTP mux (DefaultServeMux) ---
	// ListenForWebhook регистрирует обработчик на DefaultServeMux, поэтому health и
	// контент живут там же.
	srv := &httpserver.Server{Catalog: catalog, Log: log}
	if db != nil {
		srv.DB = db
	}
	srv.Register(http.DefaultServeMux)

	addr := net.JoinHostPort("0.0.0.0", cfg.Port)

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(ctx, addr, bot, r, webhookURL, log)
	} else {
		startPollingMode(ctx, addr, bot, r, log)
	}
	r.Wait()
}

func openDB(ctx context.Context, dsn string, log *zap.Logger) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("sql.Open", zap.Error(err))
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal("db.Ping", zap.Error(err))
	}
	log.Info("db connected", zap.String("dsn", config.SafeDSN(dsn)))
	return db
}

// ---------------- Modes -----------------

func startWebhookMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log *zap.Logger) {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal("webhook", zap.Error(err))
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal("set webhook", zap.Error(err))
	}

	updates := bot.ListenForWebhook(path)
	go func() {
		for upd := range updates {
			r.HandleUpdate(ctx, upd)
		}
		log.Info("webhook updates channel closed")
	}()

	log.Info("webhook listening", zap.String("addr", addr), zap.String("path", path))
	if err := httpserver.ListenAndServe(ctx, addr, http.DefaultServeMux, log); err != nil {
		log.Fatal("http", zap.Error(err))
	}
}

func startPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, log *zap.Logger) {
	// health и контент нужны и в polling-режиме
	go func() {
		if err := httpserver.ListenAndServe(ctx, addr, http.DefaultServeMux, log); err != nil {
			log.Error("http", zap.Error(err))
		}
	}()

	runPolling(ctx, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	}, log)
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func clampDelay(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// Updater: часть *tgbotapi.BotAPI для поллинга.
type Updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot Updater, handle func(tgbotapi.Update), log *zap.Logger) {
	offset := 0
	const (
		baseDelay = 1 * time.Second
		maxDelay  = 15 * time.Second
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err), baseDelay, maxDelay)
			log.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ---------------- Helpers -----------------

func shortHash(s string) string {
	// лёгкий хэш для пути вебхука (не крипто, но стабильно для токена)
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
