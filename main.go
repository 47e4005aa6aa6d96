package main

import (
	"fmt"
	"log"
	"time"

	"github.com/LabaLabaSunda/Attendance-system/internal/config"
	"github.com/LabaLabaSunda/Attendance-system/internal/database"
	"github.com/LabaLabaSunda/Attendance-system/internal/router"
	"github.com/LabaLabaSunda/Attendance-system/internal/token"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// attendance days are bound to the office timezone, not the host's
	if cfg.Server.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Server.Timezone)
		if err != nil {
			log.Fatalf("load timezone %q: %v", cfg.Server.Timezone, err)
		}
		time.Local = loc
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

	// default admin/demo accounts on first run
	if err := database.SeedDefaultUsers(db, cfg.Security.BcryptCost); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	tokens := token.NewStore()
	resolver := token.NewResolver(cfg.QR.TunnelURL, cfg.QR.BaseURL, cfg.Server.Port)

	// setup router
	r := router.SetupRouter(cfg, db, tokens, resolver)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	log.Printf("scan URL base: %s", resolver.Base())
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
