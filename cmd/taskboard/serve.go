package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/hub"
	"taskboard/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (default :3000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting taskboard server...")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log.Printf("Config: %s", cfg.Summary())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Driver)

	eventBus := service.NewEventBus()

	sseHub := hub.New(handler.OwnerFromRequest)
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	defer eventBus.Unsubscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event.Owner, string(event.Type), event)
			case <-ctx.Done():
				return
			}
		}
	}()

	taskSvc := service.NewRankingService(repo, eventBus)
	ownerSvc := service.NewOwnerService(repo, eventBus)

	mux := http.NewServeMux()
	handler.NewTaskHandler(taskSvc).Register(mux)
	handler.NewOwnerHandler(ownerSvc).Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.HandleFunc("GET /healthz", handler.Health(repo))

	server := newServer(cfg, handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}
}
