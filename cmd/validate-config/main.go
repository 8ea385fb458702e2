package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/glycocare/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Effective configuration:\n")
	fmt.Printf("  - HTTP Listen: %s\n", cfg.HTTP.ListenAddr())
	fmt.Printf("  - DB: %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	fmt.Printf("  - Redis: %s\n", orUnset(cfg.Redis.Host))
	fmt.Printf("  - Classifier: %s\n", cfg.Inference.Backend)
	fmt.Printf("  - HF Token: %s\n", maskToken(cfg.Inference.HuggingFaceToken))
	fmt.Printf("  - Inference Timeout: %s\n", cfg.Inference.CallTimeout)
	fmt.Printf("  - AWS Region: %s\n", orUnset(cfg.AWS.Region))
	fmt.Printf("  - S3 Bucket: %s\n", orUnset(cfg.AWS.S3Bucket))
	fmt.Printf("  - JWT Secret: %s\n", maskToken(cfg.Auth.JWTSecret))
	fmt.Printf("  - Chat: %s (%s), key %s\n", cfg.Chat.Provider, cfg.Chat.Model, maskToken(cfg.Chat.ChatAPIKey()))
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.Telegram.Token))
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
	fmt.Printf("  - Trace Exporter: %s (service %s)\n", cfg.Tracing.Exporter, cfg.Tracing.ServiceName)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orUnset(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}
