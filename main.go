package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coinquest/config"
	"coinquest/database"
	"coinquest/handlers"
	"coinquest/mq"
	"coinquest/services"
	"coinquest/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("failed to seed catalog:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Leaderboard: Redis when configured, SQL otherwise ---
	var board services.Leaderboard = services.NewSQLLeaderboard(db)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable at %s, using SQL leaderboard: %v", cfg.RedisAddr, err)
			_ = rdb.Close()
		} else {
			board = services.NewRedisLeaderboard(rdb)
			defer rdb.Close()
			log.Printf("✅ Redis leaderboard at %s", cfg.RedisAddr)
		}
		cancel()
	}

	// --- Messaging ---
	var (
		events services.EventPublisher = services.NopPublisher{}
		broker *mq.Broker
	)
	if cfg.AMQPURL != "" {
		broker, err = mq.Dial(cfg.AMQPURL, cfg.AMQPEventQueue, cfg.AMQPScoreQueue)
		if err != nil {
			log.Fatal("failed to connect to message broker:", err)
		}
		defer broker.Close()
		events = mq.NewPublisher(broker.Channel, cfg.AMQPEventQueue)
	}

	users := services.NewUserService(db, cfg.BcryptCost)
	ledger := services.NewLedgerService(db, events, board)
	reconciler := services.NewReconciler(db)

	if broker != nil {
		deliveries, err := broker.Consume(cfg.AMQPScoreQueue)
		if err != nil {
			log.Fatal("failed to start score consumer:", err)
		}
		go mq.NewScoreConsumer(users, ledger).Run(ctx, deliveries)
	}

	// --- Ledger export ---
	var exporter *services.LedgerExporter
	if cfg.ExportEnabled() {
		store, err := utils.NewObjectStore(ctx, utils.ObjectStoreOptions{
			Endpoint:        cfg.ExportEndpoint,
			Region:          cfg.ExportRegion,
			AccessKeyID:     cfg.ExportAccessKeyID,
			SecretAccessKey: cfg.ExportSecretAccessKey,
		})
		if err != nil {
			log.Fatal("failed to initialize object store:", err)
		}
		exporter = services.NewLedgerExporter(db, store, cfg.ExportBucket)
	}

	sched, err := services.StartAuditScheduler(ctx, reconciler, exporter, cfg.ReconcileInterval)
	if err != nil {
		log.Fatal("failed to start scheduler:", err)
	}

	app := fiber.New(fiber.Config{
		AppName:   "coinquest",
		BodyLimit: 64 * 1024,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Origins(), ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		MaxAge:       86400,
	}))

	handlers.Setup(app, &handlers.API{
		Users:        users,
		Tokens:       services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Ledger:       ledger,
		Catalog:      services.NewCatalogService(db),
		Reconciler:   reconciler,
		Exporter:     exporter,
		ServiceToken: cfg.ServiceToken,
	})

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost:%d (%s store)", cfg.Port, cfg.DBDriver)
	log.Printf("✅ Reconciliation every %s, export enabled: %t", cfg.ReconcileInterval, exporter != nil)

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

