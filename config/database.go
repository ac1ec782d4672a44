package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func ConnectDB() {
	// Hosted deployments inject DATABASE_URL; local dev builds a DSN
	// from parts.
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DB_URL")
	}

	if dbURL == "" {
		host := getenv("DB_HOST", "localhost")
		user := getenv("DB_USER", "postgres")
		password := getenv("DB_PASSWORD", "postgres")
		dbname := getenv("DB_NAME", "highpurchase")
		port := getenv("DB_PORT", "5432")
		dbURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host, user, password, dbname, port,
		)
	} else if !strings.Contains(dbURL, "sslmode=") {
		sep := "?"
		if strings.Contains(dbURL, "?") {
			sep = "&"
		}
		dbURL = dbURL + sep + "sslmode=require"
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "[GORM] ", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Money maths assumes UTC everywhere.
	if err := db.Exec(`SET TIME ZONE 'UTC'`).Error; err != nil {
		log.Printf("could not set session timezone to UTC: %v", err)
	}

	DB = db
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
