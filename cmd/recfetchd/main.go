package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recfetch/internal/api"
	"recfetch/internal/config"
	"recfetch/internal/loader"
	"recfetch/internal/logger"
	"recfetch/internal/manager"
	"recfetch/internal/memstor"
	"recfetch/internal/naming"
	"recfetch/internal/render"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger.SetupDefault(cfg.Logger)

	slog.Debug("server config", "cfg", redacted(cfg))

	// без шрифта иконку не нарисовать, это ошибка конфигурации
	rnd, err := render.New(render.Config{
		Size:     cfg.Render.Size,
		FontPath: cfg.Render.FontPath,
		FontSize: cfg.Render.FontSize,
	})
	if err != nil {
		log.Fatalf("init renderer failed: %v", err)
	}

	stor := memstor.New(memstor.Config{
		ErrorTTL: cfg.Status.ErrorTTL,
	})
	defer stor.Cancel()

	names := naming.New(cfg.Naming.Schedule, cfg.Naming.FolderPrefix, cfg.Naming.DayNames)
	ldr := loader.New(loader.NewFTPDialer(cfg.FTP), names, loader.Config{
		Prefix:        cfg.FTP.Prefix,
		ProgressEvery: cfg.Loader.ProgressEvery,
	})
	manager := manager.New(cfg.Loader.DestDir, stor, ldr, rnd)

	handler := logger.HTTPLogging(slog.Default(), api.New(manager))
	server := newServer(cfg.Server.Addr, handler)

	done := make(chan int)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		s := <-c
		slog.Info("shutdown by signal", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}

		// загрузку прервать нельзя, ждём сколько можем
		if err := manager.Wait(ctx); err != nil {
			slog.Warn("download is still in progress", "error", err)
		}

		close(done)
	}()

	slog.Info("server startup", "addr", server.Addr, "dest", cfg.Loader.DestDir, "ftp", cfg.FTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	os.Exit(<-done)
}

func redacted(cfg config.Config) config.Config {
	if cfg.FTP.Password != "" {
		cfg.FTP.Password = "***"
	}
	return cfg
}

// newServer создаёт HTTP-сервер. Ответы маленькие, поэтому таймауты короткие.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,

		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       1 * time.Minute,

		MaxHeaderBytes: 8192, // 8 KB
	}
}
