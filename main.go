package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/alsultanqa/mini-back/internal/config"
	"github.com/alsultanqa/mini-back/internal/database"
	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/router"
	"github.com/alsultanqa/mini-back/internal/service"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	rates := fx.NewTable()
	if cfg.Bank.RateJitter {
		// demo rate drift, one tick per minute
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				rates.Jiggle()
			}
		}()
	}

	serial := service.NewSerialGen()
	settleDelay := time.Duration(cfg.Bank.SettleDelayMs) * time.Millisecond
	settler := service.NewSettler(db, settleDelay, serial)
	if n, err := settler.Resume(); err != nil {
		log.Fatalf("resume pending settlements: %v", err)
	} else if n > 0 {
		log.Printf("rescheduled %d pending settlements", n)
	}

	r := router.Setup(cfg, db, rates, settler, serial)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
