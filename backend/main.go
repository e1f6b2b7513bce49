package main

import (
	"fmt"
	"log"

	_ "github.com/joho/godotenv/autoload"

	"easedrop/backend/config"
	"easedrop/backend/cron"
	"easedrop/backend/db"
	"easedrop/backend/lifecycle"
	"easedrop/backend/server"
	"easedrop/backend/storage"
)

func main() {
	cfg := config.Load()

	var store db.RecordStore
	var err error
	switch cfg.DBType {
	case config.PostgresDB:
		store, err = db.NewPostgresStore(cfg.Postgres)
	case config.MemoryDB:
		store = db.NewMemoryStore()
	default:
		log.Fatalf("Invalid db type '%s', should be either '%s' or '%s'",
			cfg.DBType, config.PostgresDB, config.MemoryDB)
	}

	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer store.Close()

	files, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Unable to init storage: %v\n", err)
	}

	mgr := lifecycle.NewManager(store, files, lifecycle.DeletionGraceDelay)

	c := cron.InitTasks(cfg, mgr, server.ManageLimiters)
	defer c.Stop()

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server.New(cfg, mgr).Run(addr)
}
