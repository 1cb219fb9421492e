package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/Dan9191/loan-analytics/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SignatureHeader carries the HMAC of the served report payload
const SignatureHeader = "X-Report-Signature"

type Handler struct {
	svc *service.Service
	log logrus.FieldLogger
}

func NewHandler(svc *service.Service, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, expiresAt, err := h.svc.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Errorf("Login failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)})
}

// LatestReport serves the latest report exactly as it was signed
func (h *Handler) LatestReport(w http.ResponseWriter, r *http.Request) {
	payload, signature, err := h.svc.LatestPayload(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(SignatureHeader, signature)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// LatestTable serves one table of the latest report
func (h *Handler) LatestTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.LatestTable(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// TriggerRun starts a report run and waits for it to finish
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Run(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":           report.ID,
		"generated_at": report.GeneratedAt,
		"cleaning":     report.Cleaning,
		"excluded":     report.Excluded(),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoReport), errors.Is(err, service.ErrUnknownTable):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrRunInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Errorf("Request failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
