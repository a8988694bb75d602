package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/alert"
	"github.com/ykvlv/alert-relay-bot/internal/bot"
	"github.com/ykvlv/alert-relay-bot/internal/config"
	"github.com/ykvlv/alert-relay-bot/internal/httpapi"
	"github.com/ykvlv/alert-relay-bot/internal/registrar"
	"github.com/ykvlv/alert-relay-bot/internal/store"
	"github.com/ykvlv/alert-relay-bot/internal/telegram"
)

const (
	shutdownTimeout = 5 * time.Second
	turnTimeout     = 30 * time.Second
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
}

// New connects to Telegram and the store and wires every component.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	_ = tgbotapi.SetLogger(zap.NewStdLog(log.Named("tgbotapi")))

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	// The client timeout must outlive the long poll.
	client := &http.Client{Timeout: cfg.PushTimeout + time.Duration(cfg.UpdateTimeout)*time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	api.Debug = false

	repo, err := store.Open(ctx, cfg.Store())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	adapter := telegram.NewAdapter(api, cfg.SendRatePerSec, log)
	reg := registrar.New(repo, adapter, log)
	handler := bot.NewHandler(repo, adapter, reg, log, cfg.DefaultTZ)
	dispatcher := alert.NewDispatcher(repo, adapter, log, cfg.PushTimeout)

	engine := httpapi.NewRouter(httpapi.NewHandler(dispatcher, repo, log), httpapi.Options{APIKey: cfg.APIKey})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 3 * time.Second,
		// A notify request waits for the push.
		WriteTimeout: cfg.PushTimeout + 5*time.Second,
	}

	return &App{
		cfg:     cfg,
		log:     log,
		bot:     api,
		httpSrv: srv,
		repo:    repo,
		router:  telegram.NewRouter(handler, log),
	}, nil
}

// Run serves HTTP and polls Telegram until ctx is cancelled or a signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting alert-relay-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("store", a.cfg.StoreDriver),
		zap.String("http", a.cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvErr := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.cfg.UpdateTimeout
	u.AllowedUpdates = []string{"message", "callback_query", "my_chat_member"}
	updCh := a.bot.GetUpdatesChan(u)

	var turns sync.WaitGroup
	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			break loop
		case err := <-srvErr:
			a.log.Error("http server error", zap.Error(err))
			runErr = err
			break loop
		case upd, ok := <-updCh:
			if !ok {
				break loop
			}
			turns.Add(1)
			go func() {
				defer turns.Done()
				a.handleUpdate(upd)
			}()
		}
	}

	a.bot.StopReceivingUpdates()

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := a.httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	cancel()

	turns.Wait()
	if err := a.repo.Close(); err != nil {
		a.log.Warn("store close error", zap.Error(err))
	}
	return runErr
}

// handleUpdate runs one turn detached from the poll loop, so shutdown lets it finish.
func (a *App) handleUpdate(upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("update handler panicked", zap.Int("update_id", upd.UpdateID), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()
	a.router.HandleUpdate(ctx, upd)
}
