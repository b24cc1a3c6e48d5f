package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"material-reconciler/core/loader"
	"material-reconciler/core/logger"
	"material-reconciler/core/middleware/auth"
	"material-reconciler/core/middleware/ratelimit"
	"material-reconciler/core/middleware/rayid"
	"material-reconciler/core/reconcile"

	"material-reconciler/feature/integrity"
	"material-reconciler/feature/materials"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "material-reconciler/docs/swagger"
)

// @title Material Reconciler API
// @version 1.0
// @description Matches calculator materials against the warehouse catalog.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Load Configuration, Logger and Connections
		d, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer d.Close()
		cfg, logg := d.cfg, d.logger
		zap.ReplaceGlobals(logg)

		// 2. Build the Engine
		source, err := d.catalogCache()
		if err != nil {
			logg.Fatal("Failed to initialize catalog", zap.Error(err))
		}
		store, err := d.mappingStore()
		if err != nil {
			logg.Fatal("Failed to initialize mapping store", zap.Error(err))
		}
		engine := reconcile.NewEngine(source, store, cfg.Matching, logg)
		logg.Info("Reconciliation engine ready",
			zap.String("catalog", source.Name()),
			zap.String("mappings", cfg.Mappings.Backend),
			zap.Bool("cache", d.redis != nil),
			zap.Float64("auto_accept", engine.Config().AutoAccept))

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
			BodyLimit:             8 * 1024 * 1024,
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(materials.NewFeature(engine, cfg.Server.SessionTTL(), cfg.Server.RequestTimeout(), logg))
		mgr.Register(integrity.NewFeature(integrity.Dependencies{
			Storage:        d.storage,
			Bucket:         cfg.Storage.Bucket,
			SnapshotObject: cfg.Catalog.Object,
			CatalogSource:  cfg.Catalog.Source,
			DB:             d.db,
			Redis:          d.redis,
		}, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request completed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Rate limiting and Auth (Protect API)
		app.Use(ratelimit.New(ratelimit.Config{
			Rate:    cfg.Server.RateLimit,
			Burst:   cfg.Server.RateBurst,
			IdleTTL: 10 * time.Minute,
		}))
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, JWTSecret: cfg.Server.JWTSecret}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(cfg.Server.RequestTimeout())
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
