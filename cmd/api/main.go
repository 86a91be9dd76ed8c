package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Werneck0live/personal-controller/internal/admin"
	"github.com/Werneck0live/personal-controller/internal/app"
	"github.com/Werneck0live/personal-controller/internal/config"
	"github.com/Werneck0live/personal-controller/internal/handlers"
)

// cmd/api/main.go
func main() {
	_ = config.LoadDotEnv() // .env é opcional
	cfg := config.Load()

	// Logger JSON "global" - permite usar slog.Info/slog.Error/Warn em qualquer lugar
	_ = config.InitLogger(cfg.LogLevel)
	slog.Info("starting", "port", cfg.Port, "storage", cfg.StorageDriver, "version", handlers.Version)

	// HOOK: admin job (one-off)
	task := flag.String("task", "", "admin task: seed | init | reindex")
	flag.Parse()

	a, err := app.New(cfg, slog.Default())
	if err != nil {
		slog.Error("startup_error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close(context.Background()) }()

	if *task != "" {
		code := runTask(*task, a)
		_ = a.Close(context.Background())
		os.Exit(code)
	}

	h := &handlers.API{
		Store:    a.Store,
		Pub:      a.Pub,
		Indexer:  a.Indexer,
		Ingest:   a.Ingest,
		Chat:     a.Assistant,
		Sessions: a.Sessions,
		Log:      slog.Default(),
	}
	mux := http.NewServeMux()
	h.Register(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logMiddleware(handlers.CORS(mux)),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		slog.Error("server_error", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful_shutdown_error", "err", err)
	}
	slog.Info("stopped")
}

// runTask executa um job administrativo sem subir o HTTP e devolve o exit code.
func runTask(task string, a *app.App) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch task {
	case "seed":
		res, err := admin.SeedCompanies(ctx, a.Store, slog.Default())
		if err != nil {
			slog.Error("seed_failed", "err", err)
			return 1
		}
		slog.Info("seed_done", "created", len(res.Created), "existed", res.Existed, "invalid", res.Invalid)
	case "init":
		res, err := admin.Init(ctx, a.Store, a.Indexer, slog.Default())
		if err != nil {
			slog.Error("init_failed", "err", err)
			return 1
		}
		slog.Info("init_done", "created", len(res.Created), "existed", res.Existed)
	case "reindex":
		n, err := admin.Reindex(ctx, a.Indexer, a.Pub, slog.Default())
		if err != nil {
			return 1
		}
		slog.Info("reindex_done", "indexed", n)
	default:
		slog.Error("unknown_admin_task", "task", task)
		return 2
	}
	return 0
}

type statusRW struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRW) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		slog.Info("http_request",
			"method", r.Method, "path", r.URL.Path,
			"status", srw.status, "bytes", srw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}
