// Package server initializes and runs the application server: configuration,
// database and migrations, blob storage, the cipher pipeline, the notifier,
// and the HTTP API, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/secureshare/internal/blobstore"
	"github.com/dmitrijs2005/secureshare/internal/cryptox"
	"github.com/dmitrijs2005/secureshare/internal/logging"
	"github.com/dmitrijs2005/secureshare/internal/notify"
	"github.com/dmitrijs2005/secureshare/internal/server/config"
	"github.com/dmitrijs2005/secureshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secureshare/internal/server/rest"
	"github.com/dmitrijs2005/secureshare/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	km := cryptox.NewKeyManager(cfg.EncryptionSecret)
	if km.Degraded() {
		logger.Warn(ctx, "no encryption secret configured, running on the built-in development key; stored files are NOT protected")
	}
	cipher := cryptox.NewStreamCipher(km)

	if err := os.MkdirAll(cfg.TempDir, 0o770); err != nil {
		db.Close()
		return nil, fmt.Errorf("temp dir init error: %w", err)
	}
	decryptor := cryptox.NewTempDecryptor(cipher, cfg.TempDir)

	notifier := newNotifier(cfg, logger)

	userService := services.NewUserService(db, rm, cfg)
	fileService := services.NewFileService(db, rm, store, cipher, decryptor)
	shareService := services.NewShareService(db, rm, notifier, cfg)

	srv, err := rest.NewServer(cfg, logger, userService, fileService, shareService)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.StorageBackend {
	case "s3":
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			User:         cfg.S3RootUser,
			Password:     cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	case "disk":
		return blobstore.NewDiskStore(cfg.BlobDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newNotifier(cfg *config.Config, logger logging.Logger) notify.Notifier {
	if cfg.SMTPHost == "" {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
