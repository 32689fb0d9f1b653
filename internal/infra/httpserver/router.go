package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/screenguard/internal/application/retention"
	appscans "github.com/bryanwahyu/screenguard/internal/application/scans"
	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
	"github.com/bryanwahyu/screenguard/internal/middleware"
)

type Router struct {
	scansSvc  *appscans.Service
	scheduler *retention.Scheduler
	uploadDir string
}

func NewRouter(scansSvc *appscans.Service, scheduler *retention.Scheduler, uploadDir string, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{scansSvc: scansSvc, scheduler: scheduler, uploadDir: uploadDir}
	mux := chi.NewRouter()

	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 10))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.HealthHandler(checkers))
		rt.Get("/metrics", middleware.MetricsHandler)

		rt.Get("/scan-results", r.wrap(r.handleList))
		rt.Get("/scan-results/{id}", r.wrap(r.handleGet))
		rt.Delete("/scan-results/{id}", r.wrap(r.handleDelete))
		rt.Post("/scan-results/{id}/delete-now", r.wrap(r.handleDeleteNow))
		rt.Get("/scheduled-deletions", r.wrap(r.handleScheduled))
	})

	// kept screenshots copies are served for the local fallback URL
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	mux.Get("/uploads/*", fs.ServeHTTP)

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// GET /api/scan-results
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.scansSvc.List(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.ScanRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /api/scan-results/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	rec, err := r.scansSvc.Get(req.Context(), domain.RecordID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// DELETE /api/scan-results/{id} removes the record and its stored file
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	if err := r.scansSvc.Delete(req.Context(), domain.RecordID(id)); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"status":    "deleted",
		"id":        id,
		"deletedAt": time.Now(),
	})
}

// POST /api/scan-results/{id}/delete-now flags the record for the next sweep
func (r *Router) handleDeleteNow(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	if err := r.scheduler.MarkImmediate(req.Context(), domain.RecordID(id)); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"status":  "scheduled",
		"id":      id,
		"message": "record will be removed on the next sweep",
	})
}

// GET /api/scheduled-deletions
func (r *Router) handleScheduled(w http.ResponseWriter, req *http.Request) error {
	list, err := r.scheduler.ListScheduled(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.ScanRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
