package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appchecks "github.com/bryanwahyu/automaton-port/internal/application/checks"
	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
	"github.com/bryanwahyu/automaton-port/internal/middleware"
)

type Router struct {
	checksSvc *appchecks.Service
}

func NewRouter(checksSvc *appchecks.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{checksSvc: checksSvc}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.HealthHandler(checkers))

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/checks", r.wrap(r.handleTriggerCheck))
		rt.Get("/checks/latest", r.wrap(r.handleLatest))
		rt.Get("/checks/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domain.ErrInvalidTarget) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/checks
// Body: {"path": "/abs/or/rel/project", "wait": false}
// With wait=true the check runs synchronously and the full result is
// returned; otherwise it runs in the background and a queued ack comes back.
func (r *Router) handleTriggerCheck(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Path string `json:"path"`
		Wait bool   `json:"wait"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	cmd := appchecks.RunCheckCommand{Path: body.Path}

	if body.Wait {
		result, err := r.checksSvc.RunCheck(req.Context(), cmd)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(result)
	}

	// jalankan di background, biar jalan sampai selesai
	go func() {
		result, err := r.checksSvc.RunCheckUntilDone(cmd)
		if err != nil {
			log.Printf("background check error for path=%s: %v", body.Path, err)
			return
		}
		log.Printf("check finished: id=%s status=%s exit=%d", result.ID, result.Status, result.ExitCode)
	}()

	resp := map[string]any{
		"status":   "queued",
		"path":     body.Path,
		"message":  "check started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/checks/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.checksSvc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/checks/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	run, err := r.checksSvc.Get(req.Context(), domain.CheckID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(run)
}

// GET /v1/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.checksSvc.Summary(req.Context(), days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}
