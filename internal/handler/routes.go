package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes registers the API on r. Mutating routes sit behind auth.
func (h *Handler) Routes(r *mux.Router, auth mux.MiddlewareFunc, metrics http.Handler) {
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/reports/latest", h.LatestReport).Methods("GET")
	r.HandleFunc("/reports/latest/tables/{name}", h.LatestTable).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}

	// Protected routes
	authRouter := r.PathPrefix("/runs").Subrouter()
	authRouter.Use(auth)
	authRouter.HandleFunc("", h.TriggerRun).Methods("POST")
}
