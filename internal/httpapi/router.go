package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"jwfoods/api/internal/config"
	"jwfoods/api/internal/pricing"
	"jwfoods/api/internal/store"
)

type Deps struct {
	Store  *store.Store
	Config config.Config
}

type App struct {
	store *store.Store
	cfg   config.Config
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	app := &App{store: deps.Store, cfg: deps.Config}

	r.Route("/api", func(api chi.Router) {
		api.Post("/calculate-delivery", app.handleCalculateDelivery)
		api.Post("/contact", app.handleSubmitContact)
		api.Get("/coefficients", app.handleGetCoefficients)
	})

	r.Get("/health", app.handleHealth)

	r.Get("/admin", app.handleAdminDashboard)
	r.Post("/admin/update-coefficients", app.handleAdminUpdateCoefficients)
	r.Get("/admin/calculations", app.handleAdminCalculations)
	r.Get("/admin/contacts", app.handleAdminContacts)

	r.Get("/", app.handleIndex)

	return r
}

// ---------- helpers ----------

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	var e apiError
	e.Error.Code = code
	e.Error.Message = message
	writeJSON(w, status, e)
}

// ---------- JSON API ----------

func (a *App) handleCalculateDelivery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Distance *float64 `json:"distance"`
		Weight   *float64 `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	if body.Distance == nil || body.Weight == nil {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "distance and weight are required")
		return
	}
	distance, weight := *body.Distance, *body.Weight
	if distance <= 0 || weight <= 0 {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "distance and weight must be positive values")
		return
	}

	coeffs, err := a.store.CurrentCoefficients(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			writeAPIError(w, http.StatusInternalServerError, "NOT_CONFIGURED", "delivery coefficients not configured, run initdb first")
			return
		}
		log.Printf("calculate-delivery: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "calculation failed")
		return
	}

	cost := pricing.Cost(distance, weight, pricing.Coefficients{
		DistanceCoefficient: coeffs.DistanceCoefficient,
		WeightCoefficient:   coeffs.WeightCoefficient,
		BaseCost:            coeffs.BaseCost,
	})

	if _, err := a.store.InsertCalculation(r.Context(), distance, weight, cost); err != nil {
		log.Printf("calculate-delivery: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "calculation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"cost":     cost,
		"distance": distance,
		"weight":   weight,
		"coefficients_used": map[string]any{
			"distance_coefficient": coeffs.DistanceCoefficient,
			"weight_coefficient":   coeffs.WeightCoefficient,
			"base_cost":            coeffs.BaseCost,
		},
	})
}

const (
	maxNameLen  = 100
	maxEmailLen = 120
	maxPhoneLen = 20
)

func validEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

func (a *App) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}

	name := strings.TrimSpace(body.Name)
	email := strings.TrimSpace(body.Email)
	phone := strings.TrimSpace(body.Phone)
	message := strings.TrimSpace(body.Message)

	if name == "" || email == "" || message == "" {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "name, email, and message are required")
		return
	}
	if !validEmail(email) {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "please provide a valid email address")
		return
	}
	if len(name) > maxNameLen || len(email) > maxEmailLen || len(phone) > maxPhoneLen {
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "field length limit exceeded")
		return
	}

	var phonePtr *string
	if phone != "" {
		phonePtr = &phone
	}

	submission, err := a.store.InsertContact(r.Context(), name, email, phonePtr, message, uuid.New().String())
	if err != nil {
		log.Printf("contact: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "failed to submit contact form")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Thank you for your message! We'll get back to you soon.",
		"submission_id": submission.ID,
		"reference":     submission.Reference,
	})
}

func (a *App) handleGetCoefficients(w http.ResponseWriter, r *http.Request) {
	coeffs, err := a.store.CurrentCoefficients(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			writeAPIError(w, http.StatusNotFound, "NOT_CONFIGURED", "no coefficients found, run initdb first")
			return
		}
		log.Printf("coefficients: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "failed to get coefficients")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"coefficients": coeffs,
	})
}

// handleHealth always answers 200; a failed store probe only degrades
// the reported database status.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	if err := a.store.Ping(ctx); err != nil {
		dbStatus = "disconnected"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  dbStatus,
	})
}
