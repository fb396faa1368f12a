// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package kestrel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/kestrel/internal/logger"
	"github.com/telekom/kestrel/internal/traceroute"
	"github.com/telekom/kestrel/pkg/api"
	"github.com/telekom/kestrel/pkg/insights"
	"github.com/telekom/kestrel/pkg/probe"
	"github.com/telekom/kestrel/pkg/store"
	"gopkg.in/yaml.v3"
)

const (
	urlParamTargetID = "targetId"

	defaultSampleLimit = 100
	defaultEventLimit  = 50

	// Lower bounds for the insights query parameters. Values below are
	// clamped, not rejected.
	minWindowMinutes = 1
	minBucketSeconds = 10
	minMaxSamples    = 100
)

// routes returns the routes of the kestrel API
func (k *Kestrel) routes() []api.Route {
	return []api.Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: okHandler},
		{Method: http.MethodGet, Path: "/openapi", Handler: k.handleOpenAPI},
		{Method: http.MethodGet, Path: "/metrics",
			Handler: promhttp.HandlerFor(k.metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP},
		{Method: http.MethodPost, Path: "/v1/targets", Handler: k.handleCreateTarget},
		{Method: http.MethodGet, Path: "/v1/targets", Handler: k.handleListTargets},
		{Method: http.MethodGet, Path: "/v1/targets/{targetId}", Handler: k.handleGetTarget},
		{Method: http.MethodPut, Path: "/v1/targets/{targetId}", Handler: k.handleUpdateTarget},
		{Method: http.MethodDelete, Path: "/v1/targets/{targetId}", Handler: k.handleDeleteTarget},
		{Method: http.MethodGet, Path: "/v1/targets/{targetId}/samples", Handler: k.handleListSamples},
		{Method: http.MethodGet, Path: "/v1/targets/{targetId}/insights", Handler: k.handleInsights},
		{Method: http.MethodPost, Path: "/v1/targets/{targetId}/probe", Handler: k.handleProbe},
		{Method: http.MethodPost, Path: "/v1/targets/{targetId}/trace", Handler: k.handleTrace},
		{Method: http.MethodGet, Path: "/v1/events", Handler: k.handleListEvents},
	}
}

// targetRequest is the create/update payload. On update, nil fields are left
// unchanged.
type targetRequest struct {
	Address         *string `json:"address"`
	IntervalSeconds *int    `json:"intervalSeconds"`
	Active          *bool   `json:"active"`
	Url             *string `json:"url"`
	Note            *string `json:"note"`
}

// targetResponse is the boundary representation of a target. Running reflects
// the live loop registry, Active the stored intent; the two differ only
// transiently.
type targetResponse struct {
	Id              string    `json:"id"`
	Address         string    `json:"address"`
	IntervalSeconds int       `json:"intervalSeconds"`
	Active          bool      `json:"active"`
	Running         bool      `json:"running"`
	Url             string    `json:"url,omitempty"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (k *Kestrel) toTargetResponse(t store.Target) targetResponse {
	return targetResponse{
		Id:              t.ID,
		Address:         t.Address,
		IntervalSeconds: int(t.Interval / time.Second),
		Active:          t.Active,
		Running:         k.scheduler.Running(t.ID),
		Url:             t.URL,
		Note:            t.Note,
		CreatedAt:       t.CreatedAt,
	}
}

func (k *Kestrel) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	if req.Address == nil || net.ParseIP(*req.Address) == nil {
		writeError(w, http.StatusBadRequest, "address must be an IP literal")
		return
	}

	interval := 60 * time.Second
	if req.IntervalSeconds != nil {
		if *req.IntervalSeconds < 1 {
			writeError(w, http.StatusBadRequest, "intervalSeconds must be at least 1")
			return
		}
		interval = time.Duration(*req.IntervalSeconds) * time.Second
	}

	t := store.Target{
		Address:  *req.Address,
		Interval: interval,
		Active:   true,
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if req.Url != nil {
		t.URL = *req.Url
	}
	if req.Note != nil {
		t.Note = *req.Note
	}

	if err := k.store.CreateTarget(r.Context(), &t); err != nil {
		if errors.Is(err, store.ErrDuplicateAddress) {
			writeError(w, http.StatusConflict, "%v", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create target")
		return
	}

	if t.Active {
		if err := k.scheduler.Start(r.Context(), t); err != nil {
			logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to start loop for new target", "target", t.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, k.toTargetResponse(t))
}

func (k *Kestrel) handleListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := k.store.ListTargets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list targets")
		return
	}

	resp := make([]targetResponse, 0, len(targets))
	for _, t := range targets {
		resp = append(resp, k.toTargetResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (k *Kestrel) handleGetTarget(w http.ResponseWriter, r *http.Request) {
	t, ok := k.lookupTarget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k.toTargetResponse(*t))
}

// handleUpdateTarget patches a target and reconciles its loop with the new
// state: interval or address changes restart a running loop, active
// transitions start or stop it.
func (k *Kestrel) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, ok := k.lookupTarget(w, r)
	if !ok {
		return
	}

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	prev := *t
	if req.Address != nil {
		if net.ParseIP(*req.Address) == nil {
			writeError(w, http.StatusBadRequest, "address must be an IP literal")
			return
		}
		t.Address = *req.Address
	}
	if req.IntervalSeconds != nil {
		if *req.IntervalSeconds < 1 {
			writeError(w, http.StatusBadRequest, "intervalSeconds must be at least 1")
			return
		}
		t.Interval = time.Duration(*req.IntervalSeconds) * time.Second
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if req.Url != nil {
		t.URL = *req.Url
	}
	if req.Note != nil {
		t.Note = *req.Note
	}

	if err := k.store.UpdateTarget(ctx, t); err != nil {
		if errors.Is(err, store.ErrDuplicateAddress) {
			writeError(w, http.StatusConflict, "%v", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update target")
		return
	}

	if err := k.reconcileLoop(ctx, prev, *t); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to reconcile loop after update", "target", t.ID, "error", err)
	}
	if prev.Address != t.Address {
		k.scheduler.RemoveMetrics(prev.Address)
	}

	writeJSON(w, http.StatusOK, k.toTargetResponse(*t))
}

// reconcileLoop aligns the target's probing loop with its updated state.
func (k *Kestrel) reconcileLoop(ctx context.Context, prev, cur store.Target) error {
	running := k.scheduler.Running(cur.ID)

	if !cur.Active {
		if running {
			return k.scheduler.Stop(ctx, cur.ID, fmt.Sprintf("Tracking paused for %s", cur.Address))
		}
		return nil
	}

	restart := running && (prev.Interval != cur.Interval || prev.Address != cur.Address)
	if restart {
		if err := k.scheduler.Stop(ctx, cur.ID, fmt.Sprintf("Tracking restarted for %s", cur.Address)); err != nil {
			return err
		}
	}
	return k.scheduler.Start(ctx, cur)
}

func (k *Kestrel) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, ok := k.lookupTarget(w, r)
	if !ok {
		return
	}

	if k.scheduler.Running(t.ID) {
		if err := k.scheduler.Stop(ctx, t.ID, fmt.Sprintf("Tracking stopped for %s", t.Address)); err != nil {
			logger.FromContext(ctx).ErrorContext(ctx, "Failed to stop loop for deleted target", "target", t.ID, "error", err)
		}
	}
	k.scheduler.RemoveMetrics(t.Address)

	if err := k.store.DeleteTarget(ctx, t.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete target")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (k *Kestrel) handleListSamples(w http.ResponseWriter, r *http.Request) {
	t, ok := k.lookupTarget(w, r)
	if !ok {
		return
	}

	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339: %v", err)
			return
		}
		since = parsed
	}
	limit := queryInt(r, "limit", defaultSampleLimit)

	samples, err := k.store.QuerySamples(r.Context(), t.ID, since, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query samples")
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func (k *Kestrel) handleInsights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, urlParamTargetID)

	opts := insights.Options{
		Window:     time.Duration(max(queryInt(r, "windowMinutes", 60), minWindowMinutes)) * time.Minute,
		BucketSize: time.Duration(max(queryInt(r, "bucketSeconds", 60), minBucketSeconds)) * time.Second,
		MaxSamples: max(queryInt(r, "maxSamples", insights.DefaultMaxSamples), minMaxSamples),
	}

	report, err := k.insights.Compute(r.Context(), id, opts)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "target %q not found", id)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute insights")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleProbe runs a single reachability check outside the probing loop.
func (k *Kestrel) handleProbe(w http.ResponseWriter, r *http.Request) {
	t, ok := k.lookupTarget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k.prober.Probe(r.Context(), t.Address))
}

// traceRequest optionally overrides the configured trace bounds.
type traceRequest struct {
	MaxHops        int `json:"maxHops"`
	TimeoutSeconds int `json:"timeoutSeconds"`
}

func (k *Kestrel) handleTrace(w http.ResponseWriter, r *http.Request) {
	t, ok := k.lookupTarget(w, r)
	if !ok {
		return
	}

	var req traceRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
	}

	opts := k.config.Traceroute
	if req.MaxHops > 0 {
		opts.MaxHops = req.MaxHops
	}
	if req.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	result, err := k.tracer.Run(r.Context(), t.Address, opts)
	if err != nil {
		switch {
		case errors.Is(err, traceroute.ErrUnavailable), errors.Is(err, traceroute.ErrTimeout):
			writeError(w, http.StatusServiceUnavailable, "%v", err)
		case errors.Is(err, traceroute.ErrInvalidAddress):
			writeError(w, http.StatusBadRequest, "%v", err)
		default:
			writeError(w, http.StatusInternalServerError, "trace failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (k *Kestrel) handleListEvents(w http.ResponseWriter, r *http.Request) {
	targetID := r.URL.Query().Get("target")
	limit := queryInt(r, "limit", defaultEventLimit)

	events, err := k.store.ListEvents(r.Context(), targetID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleOpenAPI serves the generated schema of the boundary result types.
func (k *Kestrel) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	doc, err := openapiSchema()
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to create openapi schema", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create openapi schema")
		return
	}

	mime := r.Header.Get("Accept")
	var marshaler func(any) ([]byte, error)
	switch mime {
	case "application/json":
		marshaler = json.Marshal
	default:
		mime = "text/yaml"
		marshaler = yaml.Marshal
	}

	b, err := marshaler(doc)
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to marshal openapi schema", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to marshal openapi schema")
		return
	}
	w.Header().Set("Content-Type", mime)
	_, _ = w.Write(b)
}

// openapiSchema generates the component schemas from the boundary types.
func openapiSchema() (map[string]any, error) {
	schemas := make(openapi3.Schemas)
	for name, value := range map[string]any{
		"Target":         targetResponse{},
		"Sample":         store.Sample{},
		"Event":          store.Event{},
		"InsightsReport": insights.Report{},
		"ProbeResult":    probe.Result{},
		"TraceResult":    traceroute.Result{},
	} {
		ref, err := openapi3gen.NewSchemaRefForValue(value, schemas)
		if err != nil {
			return nil, ErrCreateOpenapiSchema{name: name, err: err}
		}
		schemas[name] = ref
	}

	doc := openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "kestrel",
			Description: "Target monitoring and insights engine",
			Version:     "0.1.0",
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}

	// The doc only marshals through its json tags; round-trip through a plain
	// map so the yaml encoder sees the right field names.
	j, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(j, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// lookupTarget resolves the targetId url parameter, writing a 404 on miss.
func (k *Kestrel) lookupTarget(w http.ResponseWriter, r *http.Request) (*store.Target, bool) {
	id := chi.URLParam(r, urlParamTargetID)
	t, err := k.store.GetTarget(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "target %q not found", id)
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load target")
		return nil, false
	}
	return t, true
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}
