package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"goldwatch/core/config"
	"goldwatch/core/database"
	"goldwatch/core/loader"
	"goldwatch/core/logger"
	"goldwatch/core/middleware/auth"
	"goldwatch/core/middleware/rayid"
	"goldwatch/feature/goldprice"
	"goldwatch/feature/item"
	"goldwatch/feature/itemprice"
	"goldwatch/feature/population"
	"goldwatch/feature/server"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "goldwatch/docs/swagger"
)

// @title Goldwatch API
// @version 1.0
// @description API for game server gold prices, item prices and populations.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the goldwatch server",
	Long:  `Starts the HTTP server, loads all features and runs the feed updater.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := migrate(db); err != nil {
			logg.Fatal("Failed to migrate database", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		svc := buildApplication(cfg, db, logg)

		mgr := loader.NewManager()
		mgr.Register(server.NewFeature(svc.servers, logg))
		mgr.Register(item.NewFeature(svc.items, logg))
		mgr.Register(itemprice.NewFeature(svc.itemPrices, logg))
		mgr.Register(goldprice.NewFeature(svc.goldPrices, svc.updater, logg))
		mgr.Register(population.NewFeature(svc.populations, logg))

		// RayID first so every downstream log line carries the request id.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if svc.updater != nil {
			go svc.updater.Start(ctx)
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
