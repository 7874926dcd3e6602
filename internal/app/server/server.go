package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ptohub/internal/domain/auth"
	"ptohub/internal/domain/balance"
	"ptohub/internal/domain/calendar"
	"ptohub/internal/domain/directory"
	"ptohub/internal/domain/notify"
	"ptohub/internal/domain/pto"
	"ptohub/internal/domain/reports"
	"ptohub/internal/domain/settings"
	"ptohub/internal/platform/config"
	"ptohub/internal/platform/email"
	"ptohub/internal/store"
	"ptohub/internal/store/pgstore"
	"ptohub/internal/store/xlsxstore"
	adminhandler "ptohub/internal/transport/http/handlers/admin"
	authhandler "ptohub/internal/transport/http/handlers/auth"
	directoryhandler "ptohub/internal/transport/http/handlers/directory"
	ptohandler "ptohub/internal/transport/http/handlers/pto"
	reportshandler "ptohub/internal/transport/http/handlers/reports"
	"ptohub/internal/transport/http/middleware"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config config.Config
	Store  store.Tabular
	Router http.Handler

	closers []func()
}

// New wires the store backend, domain services, and HTTP routes. Postgres
// backs the store when DATABASE_URL is set, otherwise the xlsx workbook at
// WORKBOOK_PATH.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{Config: cfg}

	var (
		tabular store.Tabular
		ping    pinger
	)
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		app.closers = append(app.closers, pg.Close)
		tabular = pg
		ping = pg
	} else {
		xlsx, err := xlsxstore.Open(cfg.WorkbookPath)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", cfg.WorkbookPath, err)
		}
		app.closers = append(app.closers, func() { _ = xlsx.Close() })
		tabular = xlsx
	}
	app.Store = store.Bounded(tabular, cfg.StoreTimeout)

	dir := directory.NewService(app.Store)
	cfgService := settings.NewService(app.Store)
	cal := calendar.NewService(app.Store)
	engine := balance.NewEngine(app.Store, dir, cfgService)
	notifier := notify.New(email.New(cfg), nil, cfg.EmailFrom)
	workflow := pto.NewService(app.Store, dir, cal, engine, cfgService, notifier, pto.Options{
		ApproverPolicy:          cfg.ApproverPolicy,
		EnforceBlackoutOnSubmit: cfg.EnforceBlackoutOnSubmit,
	})
	reporting := reports.NewService(workflow, dir)

	if err := seedAdmin(ctx, cfg, dir); err != nil {
		app.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping.Ping(ctx); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(dir, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)

		directoryhandler.NewHandler(dir).RegisterRoutes(r)
		adminhandler.NewHandler(cal, cfgService).RegisterRoutes(r)
		ptohandler.NewHandler(workflow).RegisterRoutes(r)
		reportshandler.NewHandler(reporting).RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	for _, close := range a.closers {
		close()
	}
}

// seedAdmin bootstraps the first admin account so a fresh deployment can log
// in. Skipped when the directory already has users or no seed email is set.
func seedAdmin(ctx context.Context, cfg config.Config, dir *directory.Service) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	users, err := dir.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	_, err = dir.Create(ctx, directory.CreateInput{
		Name:           cfg.SeedAdminName,
		Email:          cfg.SeedAdminEmail,
		Role:           auth.RoleAdmin,
		EmploymentType: directory.EmploymentFullTime,
		HireDate:       time.Now().UTC(),
		Password:       cfg.SeedAdminPassword,
	})
	if err != nil {
		return err
	}
	slog.Info("seeded initial admin account", "email", cfg.SeedAdminEmail)
	return nil
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("ptohub server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
