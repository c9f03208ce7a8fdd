package main

import (
	"log"

	"taskdesk/internal/config"
	"taskdesk/internal/server"
)

// @title           Task Desk API
// @version         1.0
// @description     API for managing personal tasks with deadlines and statistics.

// @host      localhost:8080
// @BasePath  /

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
