package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/dompetku/backend/internal/config"
	"github.com/dompetku/backend/internal/database"
	"github.com/dompetku/backend/internal/ledger"
	mW "github.com/dompetku/backend/internal/middleware"
	"github.com/dompetku/backend/internal/services"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Monetary values travel as plain decimal JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ledgerCfg := config.LoadLedgerConfig()
	categories := ledger.Categories{
		Savings:  ledgerCfg.SavingsCategory,
		Transfer: ledgerCfg.TransferCategory,
	}

	// Initialize store clients
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, categories)
	budgetService := services.NewBudgetService(db)
	savingsService := services.NewSavingsService(db, categories)
	categoryService := services.NewCategoryService(db)
	analyticsService := services.NewAnalyticsService(db, categories, ledgerCfg.TrendWindow)
	rateLimiter := mW.NewRateLimiter(redisClient, ledgerCfg.RateLimit, ledgerCfg.RateLimitWindow)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Uploaded receipt images
	r.Mount("/uploads", http.StripPrefix("/uploads", mW.ReceiptFileServer(ledgerCfg.UploadDir)))

	// API routes (all protected: tokens are issued by the managed platform)
	r.Route("/api", func(r chi.Router) {
		r.Use(mW.AuthMiddleware)
		r.Use(rateLimiter.Handler)

		r.Get("/accounts", accountService.GetAccounts)
		r.Post("/accounts", accountService.CreateAccount)
		r.Put("/accounts/{id}", accountService.UpdateAccount)
		r.Delete("/accounts/{id}", accountService.DeleteAccount)

		r.Get("/transactions", transactionService.ListTransactions)
		r.Post("/transactions", transactionService.CreateTransaction)
		r.Post("/transactions/transfer", transactionService.CreateTransfer)
		r.Post("/transactions/reset", transactionService.ResetTransactions)
		r.Put("/transactions/{id}", transactionService.UpdateTransaction)
		r.Delete("/transactions/{id}", transactionService.DeleteTransaction)

		r.Get("/budgets", budgetService.GetBudgets)
		r.Post("/budgets", budgetService.CreateOrUpdateBudget)
		r.Delete("/budgets/{id}", budgetService.DeleteBudget)

		r.Get("/savings", savingsService.GetSavingsGoals)
		r.Post("/savings", savingsService.CreateSavingsGoal)
		r.Post("/savings/funds", savingsService.AddFunds)
		r.Delete("/savings/{id}", savingsService.DeleteSavingsGoal)

		r.Get("/categories", categoryService.GetCategories)
		r.Post("/categories", categoryService.CreateCategory)
		r.Put("/categories/{id}", categoryService.UpdateCategory)
		r.Delete("/categories/{id}", categoryService.DeleteCategory)

		r.Get("/analytics/summary", analyticsService.GetMonthlySummary)
		r.Get("/analytics/balances", analyticsService.GetAccountBalances)
		r.Get("/analytics/trends", analyticsService.GetTrends)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
