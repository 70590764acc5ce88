package main

import (
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"mechintegrity/adapters/api"
	"mechintegrity/adapters/asme"
	"mechintegrity/adapters/memory"
	"mechintegrity/adapters/postgres"
	"mechintegrity/app"
	"mechintegrity/internal/config"
	"mechintegrity/internal/logging"
	"mechintegrity/internal/policy"
	"mechintegrity/ports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Engine.LogLevel)

	var auditLog ports.AuditLog
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		auditLog = postgres.NewAuditRepository(db)
		logger.Info("audit store: postgres")
	} else {
		auditLog = memory.NewAuditLog()
		logger.Warn("audit store: in-memory (no DATABASE_URL set); entries do not survive restart")
	}

	table := asme.NewBuiltin()
	resolver := app.NewPropertyResolver(table)
	svc := app.NewAssessmentService(resolver, auditLog, app.NewMonotonicClock(), policy.Default(), logger)
	pool := app.NewPool(svc, cfg.Engine.PoolSize, cfg.Engine.QueueDepth, logger)
	defer pool.Close()

	server := api.NewServer(pool, svc, table, logger)
	logger.Info("listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, server.Router()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
