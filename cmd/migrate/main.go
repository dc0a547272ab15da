package main

import (
	"log"
	"os"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatalf("Error: unable to connect to database: %v", err)
	}

	log.Println("Running migrations...")
	err = db.AutoMigrate(
		&model.User{},
		&model.Chat{},
		&model.Membership{},
		&model.Message{},
		&model.ReadStatus{},
	)
	if err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	log.Println("Migrations completed")
}
