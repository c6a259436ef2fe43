package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	APIBaseURL string
	SessionDSN string
	RedisAddr  string
	RedisPass  string
	LogFile    string
}

func Load() Config {
	// .env is optional; deployments usually set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = "http://localhost:5000/api"
	}
	dsn := os.Getenv("SESSION_DSN")
	if dsn == "" {
		dsn = "storefront.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./storefront.log"
	}

	cfg := Config{
		Port:       port,
		APIBaseURL: base,
		SessionDSN: dsn,
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		LogFile:    logFile,
	}
	log.Printf("[config] PORT=%s API_BASE_URL=%s SESSION_DSN=%s REDIS_ADDR=%s LOG_FILE=%s",
		cfg.Port, cfg.APIBaseURL, cfg.SessionDSN, cfg.RedisAddr, cfg.LogFile)
	return cfg
}
