package main

import (
	"database/sql"
	"log"
	"net/http"

	"razorpay-gateway/internal/checkout"
	"razorpay-gateway/internal/config"
	"razorpay-gateway/internal/db"
	"razorpay-gateway/internal/logger"
	"razorpay-gateway/internal/metrics"
	"razorpay-gateway/internal/middleware"
	"razorpay-gateway/internal/payment"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Swappable for tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	repo := payment.NewRepository(database)
	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	provider := payment.NewRazorpayProvider(cfg.RazorpayKeyID, gateway, repo)

	handler := checkout.NewHandler(provider, repo)

	metrics.RegisterDefault()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("POST /checkout/{id}", handler.CreateCheckout)
	mux.HandleFunc("POST /checkout/callback", handler.Callback)
	mux.Handle("POST /refunds", middleware.RequireAuth([]byte(cfg.JWTSecret))(http.HandlerFunc(handler.Refund)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.RateLimitMiddleware(mux),
		),
	)
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	srv := newServer(cfg, database)

	log.Printf("🚀 Payment gateway running at http://localhost:%s/", cfg.AppPort)
	return startServerFunc(":"+cfg.AppPort, srv)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
