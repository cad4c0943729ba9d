package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/auth"
	"folio/blog"
	"folio/chat"
	"folio/config"
	"folio/database"
	"folio/portfolio"
	"folio/site"

	"github.com/akamensky/argparse"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
)

var logger = loggo.GetLogger("folio")

func setupLogging(spec string) error {
	writer := loggo.NewSimpleWriter(os.Stderr, logFormatter)
	if _, err := loggo.ReplaceDefaultWriter(writer); err != nil {
		return errors.Trace(err)
	}
	return loggo.ConfigureLoggers(spec)
}

func logFormatter(entry loggo.Entry) string {
	ts := entry.Timestamp.In(time.UTC).Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s %-7s %s %s", ts, entry.Level, entry.Module, entry.Message)
}

func main() {
	parser := argparse.NewParser("folio", "Personal portfolio, blog and terminal")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Configuration file (yaml, toml or json)", Default: ""})

	serveCmd := parser.NewCommand("serve", "Run the web server")

	createAdminCmd := parser.NewCommand("create-admin", "Create an admin account")
	adminUsername := createAdminCmd.String("u", "username", &argparse.Options{Help: "Admin username", Required: true})
	adminPassword := createAdminCmd.String("p", "password", &argparse.Options{Help: "Admin password", Required: true})

	cleanupCmd := parser.NewCommand("cleanup-sessions", "Delete expired admin sessions")

	seedCmd := parser.NewCommand("seed", "Replace the portfolio with the contents of a seed file")
	seedFile := seedCmd.String("f", "file", &argparse.Options{Help: "Seed file, defaults to portfolio.seed_file", Default: ""})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg.Log.Spec); err != nil {
		fmt.Fprintf(os.Stderr, "configuring logging: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Criticalf("opening database: %v", err)
		os.Exit(1)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		logger.Criticalf("migrating database: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	authService := auth.NewService(db, cfg.Session.TTL)

	switch {
	case serveCmd.Happened():
		err = serve(cfg, db, authService)
	case createAdminCmd.Happened():
		var user *database.AdminUser
		user, err = authService.CreateAdminUser(ctx, *adminUsername, *adminPassword)
		if err == nil {
			logger.Infof("created admin %q (id %d)", user.Username, user.ID)
		}
	case cleanupCmd.Happened():
		var n int64
		n, err = authService.CleanupExpiredSessions(ctx)
		if err == nil {
			logger.Infof("removed %d expired sessions", n)
		}
	case seedCmd.Happened():
		path := *seedFile
		if path == "" {
			path = cfg.Portfolio.SeedFile
		}
		err = seedPortfolio(ctx, db, path)
	}

	if err != nil {
		logger.Errorf("%v", err)
		database.Close(db)
		os.Exit(1)
	}
}

func seedPortfolio(ctx context.Context, db *gorm.DB, path string) error {
	seed, err := portfolio.LoadSeed(path)
	if err != nil {
		return errors.Trace(err)
	}
	if err := portfolio.Seed(ctx, db, seed); err != nil {
		return errors.Trace(err)
	}
	logger.Infof("seeded portfolio from %s", path)
	return nil
}

// seedIfEmpty loads the configured seed file on first boot.
func seedIfEmpty(ctx context.Context, db *gorm.DB, folio *portfolio.Repository, path string) error {
	info, err := folio.GetPersonalInfo(ctx)
	if err != nil || info != nil {
		return errors.Trace(err)
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warningf("portfolio is empty and seed file %s is unavailable: %v", path, err)
		return nil
	}
	return seedPortfolio(ctx, db, path)
}

func buildChat(ctx context.Context, cfg *config.Config, folio *portfolio.Repository) (*chat.Proxy, func(), error) {
	closer := func() {}

	var history chat.History = chat.NewMemoryHistory(cfg.Chat.HistoryLimit)
	if cfg.Chat.RedisURL != "" {
		redisHistory, err := chat.NewRedisHistory(ctx, cfg.Chat.RedisURL, cfg.Chat.HistoryLimit, cfg.Chat.HistoryTTL)
		if err != nil {
			return nil, closer, errors.Annotate(err, "connecting chat history store")
		}
		history = redisHistory
		closer = func() { redisHistory.Close() }
	}

	if !cfg.ChatEnabled() {
		logger.Warningf("chat.api_key is not set, the assistant is disabled")
		return chat.NewProxy(nil, history, ""), closer, nil
	}

	model, err := chat.NewGeminiModel(ctx, cfg.Chat)
	if err != nil {
		return nil, closer, errors.Annotate(err, "creating chat model")
	}

	p, err := folio.Load(ctx)
	if err != nil {
		return nil, closer, errors.Trace(err)
	}
	return chat.NewProxy(model, history, chat.Profile(p)), closer, nil
}

func serve(cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if created, err := authService.EnsureAdminUser(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return errors.Annotate(err, "provisioning admin")
	} else if created {
		logger.Infof("created admin %q from config", cfg.Admin.Username)
	}

	folio := portfolio.NewRepository(db)
	if err := seedIfEmpty(ctx, db, folio, cfg.Portfolio.SeedFile); err != nil {
		return errors.Trace(err)
	}

	chatProxy, closeChat, err := buildChat(ctx, cfg, folio)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeChat()

	s := site.NewServer(cfg, authService, blog.NewRepository(db), folio, chatProxy)
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", cfg.Server.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return errors.Annotate(err, "HTTP server stopped")
	case <-ctx.Done():
	}

	logger.Infof("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Trace(srv.Shutdown(shutdownCtx))
}
