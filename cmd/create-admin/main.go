package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/modamarket/storefront/internal/config"
	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/create-admin/main.go <email> <api-key> [store-name]")
		fmt.Println("Example: go run cmd/create-admin/main.go \"seller@example.com\" \"seller-api-key-12345\" \"Atelier One\"")
		os.Exit(1)
	}

	email := os.Args[1]
	apiKey := os.Args[2]
	storeName := ""
	if len(os.Args) > 3 {
		storeName = os.Args[3]
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	// Create admin
	admin := &domain.Admin{
		Email:      email,
		StoreName:  storeName,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}

	err = repos.Admin.Create(context.Background(), admin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Admin created successfully!\n\n")
	fmt.Printf("Admin ID: %s\n", admin.ID.String())
	fmt.Printf("Email: %s\n", admin.Email)
	if admin.StoreName != "" {
		fmt.Printf("Store Name: %s\n", admin.StoreName)
	}
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
