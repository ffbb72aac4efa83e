package main

import (
	"log"

	_ "projecthub/docs"
	"projecthub/internal/config"
	"projecthub/internal/server"
)

// @title           ProjectHub API
// @version         1.0
// @description     API for projects, tasks and issue tracking.

// @contact.name   octaview
// @contact.url    t.me/octaview
// @contact.email  octaviewes@gmail.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
