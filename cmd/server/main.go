package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aghpoints/loyalty-server/internal/config"
	"github.com/aghpoints/loyalty-server/internal/database"
	"github.com/aghpoints/loyalty-server/internal/handler"
	"github.com/aghpoints/loyalty-server/internal/middleware"
	"github.com/aghpoints/loyalty-server/internal/queue"
	"github.com/aghpoints/loyalty-server/internal/repository"
	"github.com/aghpoints/loyalty-server/internal/router"
	queue_publisher "github.com/aghpoints/loyalty-server/internal/service"
	"github.com/aghpoints/loyalty-server/internal/session"
	"github.com/aghpoints/loyalty-server/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	sessCfg := config.LoadSessionConfig()

	// Select the document store driver once; everything downstream
	// only sees the store.Store interface.
	var docs store.Store
	rdb := config.NewRedisClient()
	switch cfg.StoreDriver {
	case config.DriverRedis:
		if rdb == nil {
			log.Fatal("STORE_DRIVER=redis but Redis is unreachable")
		}
		docs = store.NewRedisStore(rdb)
	case config.DriverMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql open failed: %v", err)
		}
		docs, err = store.NewMySQLStore(context.Background(), db)
		if err != nil {
			log.Fatalf("mysql store init failed: %v", err)
		}
	case config.DriverMemory:
		log.Println("running in demo mode: in-memory store, data is lost on restart")
		docs = store.NewMemoryStore()
	}

	customers := repository.NewCustomerRepo(docs)
	txs := repository.NewTransactionRepo(docs)
	ledger := repository.NewLedgerRepo(customers, txs, queue_publisher.New())
	registry := repository.NewSessionRegistry(docs, sessCfg.LivenessThreshold)
	errlog := repository.NewErrorLogRepo(docs)

	sessions := session.NewManager(sessCfg, session.RealClock(), ledger, registry, errlog)
	sessions.StartReaper(context.Background())

	// Audit consumer runs until the process exits; it reconnects on
	// broker failures by itself.
	go func() {
		if err := queue.StartTransactionConsumer(); err != nil {
			log.Printf("points consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, customers))
	router.RegisterPlayer(e,
		handler.NewPlayerHandler(customers, txs, ledger),
		handler.NewSessionHandler(sessions, txs),
		cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminHandler(customers, ledger, registry, sessions, errlog),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
