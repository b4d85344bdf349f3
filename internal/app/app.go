package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eventpulse/eventpulse/internal/config"
	"github.com/eventpulse/eventpulse/internal/database"
	"github.com/eventpulse/eventpulse/internal/memstore"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/eventpulse/eventpulse/pkg/event"
	"github.com/eventpulse/eventpulse/pkg/rsvp"
	"github.com/eventpulse/eventpulse/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Storage groups the repositories of one backend.
type Storage struct {
	Users  user.Repo
	Events event.Repository
	Rsvps  rsvp.Repository
	// Close releases the backend; nil when there is nothing to release.
	Close func()
}

func NewMemoryStorage() Storage {
	store := memstore.New()
	return Storage{Users: store, Events: store, Rsvps: store}
}

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg     config.Application
	storage Storage
	router  *mux.Router
	srv     *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := BuildDependencies(storage, &utils.SystemClock{}, cfg)
	r := NewRouter(deps, cfg)

	srv := &http.Server{
		Handler:      WithCORS(r),
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, storage: storage, router: r, srv: srv}, nil
}

func openStorage(ctx context.Context, cfg config.Application) (Storage, error) {
	if cfg.Storage.Driver == config.MemoryStorage {
		log.Warn("Using in-memory storage, data will be lost on shutdown")
		return NewMemoryStorage(), nil
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return Storage{}, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return Storage{}, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Infof("Connected to PostgreSQL at %s:%d", cfg.Database.Host, cfg.Database.Port)

	return Storage{
		Users:  user.NewUserRepo(db),
		Events: event.NewEventRepo(db),
		Rsvps:  rsvp.NewRepository(db),
		Close:  db.Close,
	}, nil
}

// NewRouter builds the router with middleware and every route registered.
func NewRouter(deps *Dependencies, cfg config.Application) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)
	return r
}

// Run starts the HTTP server and blocks until it fails or is shut down.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes storage.
func (a *Application) Shutdown(ctx context.Context) error {
	err := a.srv.Shutdown(ctx)
	if a.storage.Close != nil {
		a.storage.Close()
	}
	log.Info("Server stopped")
	return err
}
