package main

import (
	"log"
	"os"

	"github.com/taskflow/core/cmd/api/commands"
)

// @title Taskflow API
// @version 1.0
// @description Tasks, team contacts and partner discounts

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
