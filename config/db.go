package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/the-y0gi/Go-Apply-sub000/models"
)

var DB *gorm.DB

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
}

func ConnectDB() {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		GetEnvOrDefault("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect DB: ", err)
	}
	DB = db

	err = DB.AutoMigrate(
		&models.University{},
		&models.Program{},
		&models.StudentProfile{},
		&models.StudentDocument{},
		&models.Application{},
		&models.ApplicationIntake{},
		&models.PaymentRecord{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatal("auto migration failed: ", err)
	}

	// Connection pool
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("cannot access underlying database: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
