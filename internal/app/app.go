// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doutorgpt/carousel-maker/internal/api"
	"github.com/doutorgpt/carousel-maker/internal/config"
	"github.com/doutorgpt/carousel-maker/internal/di"
	"github.com/doutorgpt/carousel-maker/internal/generation"
	"github.com/doutorgpt/carousel-maker/internal/llm"
	"github.com/doutorgpt/carousel-maker/internal/logger"
	"github.com/doutorgpt/carousel-maker/internal/services"

	// model backends register themselves
	_ "github.com/doutorgpt/carousel-maker/internal/llm/providers/compat"
	_ "github.com/doutorgpt/carousel-maker/internal/llm/providers/google"
)

// Container service names.
const (
	ServiceLLM       = "llm"
	ServiceWebSocket = "websocket"
	ServiceSessions  = "sessions"
)

const shutdownTimeout = 30 * time.Second

// App owns the wired services and the HTTP server.
type App struct {
	config    *config.Config
	container *di.Container
	router    *gin.Engine
	server    *http.Server
	websocket *api.WebSocketManager
}

// New wires every service from cfg into container.
func New(cfg *config.Config, container *di.Container) (*App, error) {
	a := &App{config: cfg, container: container}

	a.initLogger()
	if err := a.initServices(); err != nil {
		return nil, err
	}
	if err := a.initRouter(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) initLogger() {
	logger.Init(a.config.LogLevel, a.config.LogFormat)
}

// NewProvider builds the configured model backend. A missing credential is
// not fatal: it yields a nil provider and every generation reports it.
func NewProvider(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.ProviderConfig())
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.LLMProvider, err)
	}
	return provider, nil
}

func (a *App) initServices() error {
	provider, err := NewProvider(a.config)
	if err != nil {
		return err
	}

	client, err := generation.NewClient(generation.Options{
		Provider:            provider,
		ProviderName:        a.config.LLMProvider,
		Model:               a.config.Model(),
		CarouselTemperature: a.config.CarouselTemperature,
		PromptTemperature:   a.config.PromptTemperature,
	})
	if err != nil {
		return fmt.Errorf("init generation client: %w", err)
	}
	a.container.Register(ServiceLLM, client)

	a.websocket = api.NewWebSocketManager()
	a.container.Register(ServiceWebSocket, a.websocket)

	store := services.NewSessionStore(a.config.SessionTTL, services.SessionOptions{
		Generator:         client,
		Events:            a.websocket,
		PromptConcurrency: a.config.PromptConcurrency,
	})
	a.container.Register(ServiceSessions, store)

	status := client.Status()
	logger.Info(context.Background(), "services initialised",
		"provider", status.Provider,
		"model", status.Model,
		"state", status.State,
	)
	return nil
}

func (a *App) initRouter() error {
	if err := a.container.Require(ServiceLLM, ServiceWebSocket, ServiceSessions); err != nil {
		return err
	}
	client, err := di.Lookup[*generation.Client](a.container, ServiceLLM)
	if err != nil {
		return err
	}
	ws, err := di.Lookup[*api.WebSocketManager](a.container, ServiceWebSocket)
	if err != nil {
		return err
	}
	store, err := di.Lookup[*services.SessionStore](a.container, ServiceSessions)
	if err != nil {
		return err
	}

	a.router = api.SetupRouter(api.NewHandler(store, client, ws), a.config.CORSOrigins)
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.websocket.Start()
	defer a.websocket.Stop()

	a.server = &http.Server{
		Addr:              ":" + a.config.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Router returns the configured engine.
func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) GetConfig() *config.Config {
	return a.config
}

func (a *App) GetDIContainer() *di.Container {
	return a.container
}

func (a *App) IsDebugMode() bool {
	return a.config.DebugMode
}
