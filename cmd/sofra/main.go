// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"sofra/internal/cache"
	"sofra/internal/config"
	"sofra/internal/handler"
	"sofra/internal/i18n"
	"sofra/internal/imaging"
	"sofra/internal/logging"
	"sofra/internal/middleware"
	"sofra/internal/render"
	"sofra/internal/scheduler"
	"sofra/internal/service"
	"sofra/internal/session"
	"sofra/internal/store"
	"sofra/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for an admin resource.
// Routes: GET base, GET base/new, POST base, GET base/{id}, POST base/{id},
// POST base/{id}/delete.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID, h.EditForm)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Post(baseID+"/delete", h.Delete)
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Sofra - restaurant menu server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOFRA_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOFRA_DB_PATH          SQLite database path (default: ./data/sofra.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOFRA_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOFRA_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOFRA_UPLOADS_DIR      Menu image directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOFRA_REDIS_URL        Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("sofra %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Initialize i18n for the public API labels
	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("i18n ready", "languages", i18n.SupportedLanguages)

	// Ensure data and upload directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	// Seed default data
	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Session manager backed by SQLite
	sessionManager := session.New(db, cfg.IsDevelopment())

	// Cache backend: Redis when configured, in-process memory otherwise
	cacheManager := cache.NewManager(ctx, cache.Options{
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.CachePrefix,
		MaxSize:  cfg.CacheMaxSize,
	})
	defer func() {
		if err := cacheManager.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	images := imaging.NewProcessor(cfg.UploadsDir)

	menuService := service.NewMenuService(db, images, cacheManager)

	renderer, err := render.New(render.Config{
		TemplatesFS:    mustSub(web.Templates, "templates"),
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing templates: %w", err)
	}

	loginProtection := middleware.NewLoginProtection(
		middleware.DefaultLoginProtectionConfig(), cacheManager.Backend())

	// Handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	dashboardHandler := handler.NewDashboardHandler(db, renderer, sessionManager, menuService, cacheManager)
	languagesHandler := handler.NewLanguagesHandler(db, renderer, sessionManager, menuService)
	menuTypesHandler := handler.NewMenuTypesHandler(db, renderer, sessionManager, menuService)
	categoriesHandler := handler.NewCategoriesHandler(db, renderer, sessionManager, menuService)
	itemsHandler := handler.NewItemsHandler(db, renderer, sessionManager, menuService, images, cfg.MaxUploadSize)
	ordersHandler := handler.NewOrdersHandler(db, renderer, sessionManager)
	ratingsHandler := handler.NewRatingsHandler(db, renderer, sessionManager)
	eventsHandler := handler.NewEventsHandler(db, renderer, sessionManager)
	menuAPIHandler := handler.NewMenuAPIHandler(menuService)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)

	// CSRF protection for form posts; the public JSON endpoints are
	// consumed by external clients and are exempt.
	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment()))
	r.Use(middleware.SkipCSRF(handler.RouteMenuAPI, handler.RouteOrder, handler.RouteRate))
	r.Use(csrfMiddleware)

	// Public JSON endpoints: language negotiation plus per-IP rate limiting
	apiLimiter := middleware.NewGlobalRateLimiter(float64(cfg.APIRateLimit), cfg.APIRateBurst)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Language(db))
		r.Use(apiLimiter.Middleware())
		r.Get(handler.RouteMenuAPI, menuAPIHandler.Get)
		r.Post(handler.RouteOrder, ordersHandler.Submit)
		r.Post(handler.RouteRate, ratingsHandler.Submit)
	})

	// Auth
	r.Group(func(r chi.Router) {
		r.Use(loginProtection.Middleware())
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
	})
	r.Get(handler.RouteLogout, authHandler.Logout)
	r.Post(handler.RouteLogout, authHandler.Logout)

	// Admin
	adminLimiter := middleware.NewGlobalRateLimiter(float64(cfg.APIRateLimit), cfg.APIRateBurst)
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminLimiter.HTMLMiddleware())
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin())

		r.Get(handler.RouteRoot, dashboardHandler.Show)
		r.Post("/maintenance/cleanup-images", dashboardHandler.CleanupImages)
		r.Post("/maintenance/flush-cache", dashboardHandler.FlushCache)

		registerCRUD(r, handler.RouteLanguages, crudHandlers{
			List:     languagesHandler.List,
			NewForm:  languagesHandler.NewForm,
			Create:   languagesHandler.Create,
			EditForm: languagesHandler.EditForm,
			Update:   languagesHandler.Update,
			Delete:   languagesHandler.Delete,
		})
		r.Post(handler.RouteLanguages+handler.RouteParamID+"/default", languagesHandler.SetDefault)

		registerCRUD(r, handler.RouteMenuTypes, crudHandlers{
			List:     menuTypesHandler.List,
			NewForm:  menuTypesHandler.NewForm,
			Create:   menuTypesHandler.Create,
			EditForm: menuTypesHandler.EditForm,
			Update:   menuTypesHandler.Update,
			Delete:   menuTypesHandler.Delete,
		})
		registerCRUD(r, handler.RouteCategories, crudHandlers{
			List:     categoriesHandler.List,
			NewForm:  categoriesHandler.NewForm,
			Create:   categoriesHandler.Create,
			EditForm: categoriesHandler.EditForm,
			Update:   categoriesHandler.Update,
			Delete:   categoriesHandler.Delete,
		})
		registerCRUD(r, handler.RouteItems, crudHandlers{
			List:     itemsHandler.List,
			NewForm:  itemsHandler.NewForm,
			Create:   itemsHandler.Create,
			EditForm: itemsHandler.EditForm,
			Update:   itemsHandler.Update,
			Delete:   itemsHandler.Delete,
		})

		r.Get(handler.RouteOrders, ordersHandler.List)
		r.Post(handler.RouteOrders+handler.RouteParamID+"/status", ordersHandler.UpdateStatus)
		r.Get(handler.RouteRatings, ratingsHandler.List)
		r.Get(handler.RouteEvents, eventsHandler.List)
	})

	// Uploaded menu images
	uploadsDir, err := filepath.Abs(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("resolving uploads directory: %w", err)
	}
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(w, req)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Landing page points API consumers at the menu endpoint.
	r.Get(handler.RouteRoot, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, handler.RouteMenuAPI, http.StatusFound)
	})

	// Background maintenance
	sched := scheduler.New(db, menuService, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// mustSub roots the embedded filesystem at the templates directory. The
// embed path is fixed at compile time, so failure here is a programmer error.
func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
