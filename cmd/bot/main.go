package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"waste-bot/internal/blob"
	"waste-bot/internal/classify"
	"waste-bot/internal/config"
	"waste-bot/internal/httpserver"
	"waste-bot/internal/logger"
	"waste-bot/internal/report"
	"waste-bot/internal/store"
	"waste-bot/internal/store/postgres"
	"waste-bot/internal/store/sqlite"
	"waste-bot/internal/telegram"
)

func main() {
	cfg := config.Load()
	if missing := cfg.Validate(); len(missing) > 0 {
		log.Fatalf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logg.Sync()

	// --- Хранилище ответов и статистики ---
	var st store.Store
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		st, err = postgres.Open(cfg.DatabaseURL)
	} else {
		st, err = sqlite.Open(cfg.DBPath)
	}
	if err != nil {
		logg.Fatalw("store open failed", "err", err)
	}
	defer st.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			logg.Fatalw("store ping failed", "err", err)
		}
	}

	// --- Blob-хранилище фотографий ---
	var blobs blob.Store
	switch cfg.BlobBackend {
	case "minio":
		blobs, err = blob.NewMinio(context.Background(), blob.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		blobs, err = blob.NewLocal(cfg.UploadsDir)
	}
	if err != nil {
		logg.Fatalw("blob store init failed", "backend", cfg.BlobBackend, "err", err)
	}

	// --- Telegram ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logg.Fatalw("telegram auth failed", "err", err)
	}
	bot.Debug = false
	logg.Infow("telegram connected", "bot", bot.Self.UserName)

	r := &telegram.Router{
		Bot:        bot,
		Classifier: classify.New(cfg.ClassifyEndpoint, time.Duration(cfg.ClassifyTimeoutSec)*time.Second),
		Blobs:      blobs,
		Store:      st,
		Log:        logg,
		ReportsDir: cfg.ReportsDir,
	}

	// --- Фоновые задачи ---
	startCron(cfg, st, blobs, logg)

	mux := httpserver.NewRouter(st)
	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, webhookURL, bot, r, mux, logg)
	} else {
		startPollingMode(addr, bot, r, mux, logg)
	}
}

func startCron(cfg config.Config, st store.Store, blobs blob.Store, logg *zap.SugaredLogger) {
	c := cron.New()

	if spec := strings.TrimSpace(cfg.ReportSchedule); spec != "" {
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			answers, err := st.Answers(ctx)
			if err != nil {
				logg.Errorw("scheduled report: answers read failed", "err", err)
				return
			}
			path := filepath.Join(cfg.ReportsDir, report.FileName)
			if err := report.Generate(ctx, answers, blobs, path); err != nil {
				logg.Errorw("scheduled report failed", "err", err)
				return
			}
			logg.Infow("scheduled report written", "path", path, "records", len(answers))
		})
		if err != nil {
			logg.Fatalw("bad report_schedule", "spec", spec, "err", err)
		}
	}

	if days := cfg.BlobRetentionDays; days > 0 {
		retention := time.Duration(days) * 24 * time.Hour
		_, err := c.AddFunc("@daily", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			removed, err := blobs.PurgeOlderThan(ctx, retention)
			if err != nil {
				logg.Errorw("blob purge failed", "err", err)
				return
			}
			logg.Infow("blob purge done", "removed", removed, "retention_days", days)
		})
		if err != nil {
			logg.Fatalw("blob purge schedule failed", "err", err)
		}
	}

	c.Start()
}

// ---------------- Modes -----------------

func startWebhookMode(addr, baseURL string, bot *tgbotapi.BotAPI, r *telegram.Router, mux *chi.Mux, logg *zap.SugaredLogger) {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		logg.Fatalw("webhook config failed", "err", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		logg.Fatalw("webhook registration failed", "err", err)
	}

	mux.Post(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		go r.HandleUpdate(*upd)
		w.WriteHeader(http.StatusOK)
	})

	logg.Infow("webhook listening", "addr", addr, "path", path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logg.Fatalw("http server failed", "err", err)
	}
}

func startPollingMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, mux *chi.Mux, logg *zap.SugaredLogger) {
	go func() {
		logg.Infow("http listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logg.Fatalw("http server failed", "err", err)
		}
	}()

	// Устойчивый поллинг с backoff, без падений процесса
	runPolling(context.Background(), bot, logg, func(upd tgbotapi.Update) {
		go r.HandleUpdate(upd)
	})
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

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, logg *zap.SugaredLogger, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			logg.Infow("polling stopped", "reason", ctx.Err())
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			logg.Warnw("polling error", "err", err, "retry_in", d)
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
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
