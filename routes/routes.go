package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/C-S-V-S-Subrahmanyam/landledger/controllers/auth"
	"github.com/C-S-V-S-Subrahmanyam/landledger/controllers/farms"
	"github.com/C-S-V-S-Subrahmanyam/landledger/controllers/users"
	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/ledger"
	"github.com/C-S-V-S-Subrahmanyam/landledger/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter(anchor ledger.Anchor) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint (root level, outside the rate limiter)
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"message":   "LandLedger Backend API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})).Methods(http.MethodGet)

	// Root endpoint
	r.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message":       "🌾 LandLedger Backend API",
			"version":       "1.0.0",
			"documentation": "/api/docs",
			"endpoints": map[string]string{
				"auth":   "/api/auth",
				"users":  "/api/users",
				"farms":  "/api/farms",
				"health": "/health",
			},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"http://localhost:5173", "http://localhost:3000",
		"http://127.0.0.1:5173", "http://127.0.0.1:3000",
	}
	if f := os.Getenv("FRONTEND_URL"); f != "" {
		origins = append(origins, f)
	}
	if originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// API-wide per-IP rate limiter (RATE_LIMIT_MAX_REQUESTS / RATE_LIMIT_WINDOW_MS)
	apiLimiter := middleware.NewIPRateLimiterFromEnv()
	api.Use(apiLimiter.Middleware)

	api.Handle("/docs", http.HandlerFunc(docsHandler)).Methods(http.MethodGet)

	// Auth
	api.Handle("/auth/register", http.HandlerFunc(auth.RegisterHandler)).Methods(http.MethodPost)
	api.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods(http.MethodPost)
	api.Handle("/auth/wallet-login", http.HandlerFunc(auth.WalletLoginHandler)).Methods(http.MethodPost)
	api.Handle("/auth/me", middleware.AuthMiddleware(http.HandlerFunc(auth.MeHandler))).Methods(http.MethodGet)

	// Users (static paths before {id})
	api.Handle("/users/analytics/stats", http.HandlerFunc(users.StatsHandler)).Methods(http.MethodGet)
	api.Handle("/users", http.HandlerFunc(users.ListUsersHandler)).Methods(http.MethodGet)
	api.Handle("/users/{id}", http.HandlerFunc(users.GetUserHandler)).Methods(http.MethodGet)
	api.Handle("/users/{id}", middleware.AuthMiddleware(http.HandlerFunc(users.UpdateUserHandler))).Methods(http.MethodPut)
	api.Handle("/users/{id}/transaction", middleware.AuthMiddleware(http.HandlerFunc(users.AddTransactionHandler))).Methods(http.MethodPost)
	api.Handle("/users/{id}/transactions", http.HandlerFunc(users.ListTransactionsHandler)).Methods(http.MethodGet)
	api.Handle("/users/{id}/farm-investment", middleware.AuthMiddleware(http.HandlerFunc(users.AddFarmInvestmentHandler))).Methods(http.MethodPost)

	// Farms
	farmsController := farms.NewController(database.DB, anchor)
	api.Handle("/farms/marketplace/active", http.HandlerFunc(farmsController.Marketplace)).Methods(http.MethodGet)
	api.Handle("/farms/owner/{ownerAddress}", http.HandlerFunc(farmsController.ByOwner)).Methods(http.MethodGet)
	api.Handle("/farms/distributions/{distributionId}/claim", middleware.AuthMiddleware(http.HandlerFunc(farmsController.Claim))).Methods(http.MethodPost)
	api.Handle("/farms", http.HandlerFunc(farmsController.List)).Methods(http.MethodGet)
	api.Handle("/farms", middleware.AuthMiddleware(http.HandlerFunc(farmsController.Create))).Methods(http.MethodPost)
	api.Handle("/farms/{farmId}", http.HandlerFunc(farmsController.Get)).Methods(http.MethodGet)
	api.Handle("/farms/{farmId}", middleware.AuthMiddleware(http.HandlerFunc(farmsController.Update))).Methods(http.MethodPut)
	api.Handle("/farms/{farmId}/invest", middleware.AuthMiddleware(http.HandlerFunc(farmsController.Invest))).Methods(http.MethodPost)
	api.Handle("/farms/{farmId}/distribute-income", middleware.AuthMiddleware(http.HandlerFunc(farmsController.DistributeIncome))).Methods(http.MethodPost)
	api.Handle("/farms/{farmId}/proof", middleware.AuthMiddleware(http.HandlerFunc(farmsController.UploadProof))).Methods(http.MethodPost)
	api.Handle("/farms/{farmId}/proof", http.HandlerFunc(farmsController.ProofURL)).Methods(http.MethodGet)

	// 404 handler with the endpoint map
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "API endpoint not found",
			"availableEndpoints": map[string]string{
				"documentation": "/api/docs",
				"health":        "/health",
				"auth":          "/api/auth",
				"users":         "/api/users",
				"farms":         "/api/farms",
			},
		})
	})

	return r
}

// docsHandler serves a self-describing endpoint catalogue.
func docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"title":       "LandLedger API Documentation",
		"version":     "1.0.0",
		"description": "Backend API for LandLedger - Agricultural Land Tokenization Platform",
		"endpoints": map[string]interface{}{
			"authentication": map[string]string{
				"POST /api/auth/register":     "Register a new user",
				"POST /api/auth/login":        "Login with username/password",
				"POST /api/auth/wallet-login": "Login/register with wallet",
				"GET /api/auth/me":            "Get current user info",
			},
			"users": map[string]string{
				"GET /api/users":                        "Get all users",
				"GET /api/users/:id":                    "Get user by ID",
				"PUT /api/users/:id":                    "Update user",
				"POST /api/users/:id/transaction":       "Add transaction to user",
				"GET /api/users/:id/transactions":       "List user transactions",
				"POST /api/users/:id/farm-investment":   "Add farm investment",
				"GET /api/users/analytics/stats":        "Get user statistics",
			},
			"farms": map[string]string{
				"GET /api/farms":                                 "Get all farms",
				"GET /api/farms/:farmId":                         "Get farm by ID",
				"POST /api/farms":                                "Create new farm",
				"PUT /api/farms/:farmId":                         "Update farm",
				"POST /api/farms/:farmId/invest":                 "Invest in farm",
				"POST /api/farms/:farmId/distribute-income":      "Distribute income",
				"POST /api/farms/distributions/:id/claim":        "Claim income from a distribution",
				"GET /api/farms/owner/:ownerAddress":             "Get farms by owner",
				"GET /api/farms/marketplace/active":              "Get active farms for investment",
				"POST /api/farms/:farmId/proof":                  "Upload ownership proof document",
				"GET /api/farms/:farmId/proof":                   "Get presigned proof document URL",
			},
		},
	})
}
