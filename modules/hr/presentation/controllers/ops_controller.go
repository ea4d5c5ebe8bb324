package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mavis-digital/hrbot/modules/hr/domain/access"
	"github.com/mavis-digital/hrbot/modules/hr/services"
)

const syncRunTimeout = 10 * time.Minute

// OpsController exposes the internal admin surface: health, metrics,
// a manual sync trigger and role management.
type OpsController struct {
	Sync     *services.SyncService
	Access   *services.AccessService
	Checker  *services.RoleChecker
	Registry *prometheus.Registry
	Log      *logrus.Logger
}

func (c *OpsController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.health).Methods(http.MethodGet)
	r.HandleFunc("/sync", c.triggerSync).Methods(http.MethodPost)
	r.HandleFunc("/roles/check", c.triggerRoleCheck).Methods(http.MethodPost)
	r.HandleFunc("/roles/{id}", c.getRole).Methods(http.MethodGet)
	r.HandleFunc("/roles/{id}", c.setRole).Methods(http.MethodPut)
	r.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

func (c *OpsController) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// triggerSync starts a full sync run (pivot, then authorization) in the
// background and returns immediately. Concurrent triggers queue up on
// the sync mutex.
func (c *OpsController) triggerSync(w http.ResponseWriter, _ *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
		defer cancel()

		report, err := c.Sync.SyncNow(ctx)
		if err != nil {
			c.Log.WithError(err).Error("manual sync failed")
			return
		}
		c.Log.WithField("report", report).Info("manual sync finished")

		if err := c.Access.Sync(ctx); err != nil {
			c.Log.WithError(err).Error("manual authorization sync failed")
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (c *OpsController) triggerRoleCheck(w http.ResponseWriter, r *http.Request) {
	promoted, err := c.Checker.CheckNow(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"promoted": promoted})
}

func (c *OpsController) getRole(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]
	role, err := c.Access.GetRole(r.Context(), key)
	if err != nil {
		if errors.Is(err, access.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not registered"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": key, "role": string(role)})
}

func (c *OpsController) setRole(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]

	var body struct {
		Role access.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if body.Role != access.RoleEmployee && body.Role != access.RoleNewcomer {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown role"})
		return
	}

	if err := c.Access.SetRole(r.Context(), key, body.Role); err != nil {
		if errors.Is(err, access.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not registered"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": key, "role": string(body.Role)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
