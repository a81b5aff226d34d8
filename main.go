package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gin-catalog/authz"
	"gin-catalog/config"
	"gin-catalog/controllers"
	"gin-catalog/dto"
	"gin-catalog/identity"
	"gin-catalog/infra"
	"gin-catalog/middlewares"
	"gin-catalog/repositories"
	"gin-catalog/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dependencies struct {
	cfg      *config.Config
	db       *gorm.DB
	verifier identity.Verifier
	states   identity.StateStore
	logger   *zap.Logger
}

func setupRouter(deps dependencies) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	cfg := deps.cfg
	logger := deps.logger

	categoryRepository := repositories.NewCategoryRepository(deps.db)
	itemRepository := repositories.NewItemRepository(deps.db)
	catalogService := services.NewCatalogService(categoryRepository, itemRepository)
	categoryController := controllers.NewCategoryController(catalogService, logger)
	itemController := controllers.NewItemController(catalogService, logger)

	userRepository := repositories.NewUserRepository(deps.db)
	sessionRepository := repositories.NewSessionRepository(deps.db)
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	authService := services.NewAuthService(userRepository, sessionRepository, deps.verifier, deps.states, services.SessionOptions{
		Secret:     cfg.Session.Secret,
		Issuer:     cfg.Session.Issuer,
		TTL:        sessionTTL,
		LocalLogin: cfg.Auth.LocalLogin,
	}, logger)
	authController := controllers.NewAuthController(authService, controllers.CookieOptions{
		Secure:     cfg.Server.CookieSecure,
		SessionTTL: sessionTTL,
		StateTTL:   time.Duration(cfg.State.TTLMinutes) * time.Minute,
	}, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LogMiddleware(logger))
	r.Use(middlewares.PrometheusMiddleware())
	r.Use(cors.Default())
	r.Use(middlewares.AuthMiddleware(authService, logger))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	createItem := middlewares.Authorize(authz.Create, authz.ItemResource, logger)

	api.GET("/catalog", categoryController.Catalog)

	categoryRouter := api.Group("/categories")
	categoryRouter.GET("", categoryController.FindAll)
	categoryRouter.GET("/:category", categoryController.FindByName)
	categoryRouter.POST("", middlewares.Authorize(authz.Create, authz.CategoryResource, logger), categoryController.Create)
	categoryRouter.PUT("/:category", middlewares.Authorize(authz.Update, authz.CategoryResource, logger), categoryController.Update)
	categoryRouter.DELETE("/:category", middlewares.Authorize(authz.Delete, authz.CategoryResource, logger), categoryController.Delete)

	categoryRouter.GET("/:category/items", itemController.FindByCategory)
	categoryRouter.POST("/:category/items", createItem, itemController.CreateInCategory)
	categoryRouter.GET("/:category/items/:item", itemController.FindByName)
	categoryRouter.PUT("/:category/items/:item", itemController.Update)
	categoryRouter.DELETE("/:category/items/:item", itemController.Delete)

	itemRouter := api.Group("/items")
	itemRouter.GET("", itemController.FindAll)
	itemRouter.POST("", createItem, itemController.Create)

	authRouter := r.Group("/auth")
	authRouter.GET("/login", authController.Login)
	authRouter.GET("/callback", authController.Callback)
	authRouter.POST("/gconnect", authController.GConnect)
	authRouter.POST("/local", authController.LocalLogin)
	authRouter.POST("/logout", authController.Logout)
	authRouter.GET("/disconnect", authController.Logout)
	authRouter.GET("/me", middlewares.RequireAuth(), authController.Me)

	return r, nil
}

func newStateStore(ctx context.Context, cfg config.StateConfig, logger *zap.Logger) (identity.StateStore, func(), error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if cfg.Store != "redis" {
		return identity.NewMemoryStateStore(ttl), func() {}, nil
	}

	store, err := identity.NewRedisStateStore(cfg.RedisURL, ttl)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("Using redis state store")
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}, nil
}

func run(configPath string) error {
	infra.Initialize()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	gin.SetMode(cfg.Server.Mode)

	db, err := infra.SetupDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := infra.AutoMigrate(db); err != nil {
			return err
		}
	}

	states, closeStates, err := newStateStore(context.Background(), cfg.State, logger)
	if err != nil {
		return err
	}
	defer closeStates()

	r, err := setupRouter(dependencies{
		cfg:      cfg,
		db:       db,
		verifier: identity.NewGoogleVerifier(cfg.OAuth, logger),
		states:   states,
		logger:   logger,
	})
	if err != nil {
		return err
	}

	janitor := infra.NewSessionJanitor(repositories.NewSessionRepository(db), logger)
	if err := janitor.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	}

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	janitor.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
