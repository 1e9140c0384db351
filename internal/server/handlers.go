package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/render"
	"github.com/vladimir-polyakov/esencia/internal/tracing"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	RegistryID    string `json:"registry_id"`
	Generation    uint64 `json:"generation"`
	Components    int    `json:"components"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type componentResponse struct {
	Name      string `json:"name"`
	Parent    string `json:"parent,omitempty"`
	Container string `json:"container,omitempty"`
	View      any    `json:"view,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx, span := s.tracer.Start(r.Context(), tracing.SpanHTTP+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(tracing.AttrHTTPPath, r.URL.Path),
				attribute.String(tracing.AttrRequestID, id),
			),
		)
		defer span.End()
		s.logger.Debug(logging.CatServer, "request", "method", r.Method, "path", r.URL.Path, "id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	reg := s.source.Registry()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       APIVersion,
		RegistryID:    reg.ID(),
		Generation:    reg.Generation(),
		Components:    reg.Len(),
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	defs := s.source.Registry().Definitions()
	out := make([]componentResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, componentResponse{
			Name:      def.Name,
			Parent:    def.Parent,
			Container: def.Container,
			View:      def.View,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	names := requestedNames(r)
	reg := s.source.Registry()

	ctx, span := tracing.StartResolveSpan(r.Context(), s.tracer, reg.ID(), names)
	start := time.Now()
	forest, err := s.cache.Resolve(ctx, reg, names)
	s.metrics.RecordResolve(time.Since(start), err)
	tracing.EndResolveSpan(span, forest, err)

	if err != nil {
		kind := component.KindOf(err)
		s.logger.Warn(logging.CatResolve, "resolve failed", "names", strings.Join(names, ","), "kind", string(kind), "error", err.Error())
		writeJSON(w, statusForKind(kind), errorResponse{Error: err.Error(), Kind: string(kind)})
		return
	}
	writeJSON(w, http.StatusOK, render.Nodes(forest))
}

// requestedNames collects repeated name parameters and comma separated names
// parameters in the order they appear in the query string, so mixing both
// forms keeps the request order. Pairs that fail to unescape are skipped.
func requestedNames(r *http.Request) []string {
	var names []string
	add := func(name string) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	for _, pair := range strings.Split(r.URL.RawQuery, "&") {
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		if key != "name" && key != "names" {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		if key == "name" {
			add(value)
			continue
		}
		for _, name := range strings.Split(value, ",") {
			add(name)
		}
	}
	return names
}

func statusForKind(kind component.Kind) int {
	switch kind {
	case component.KindEmptyRequest:
		return http.StatusBadRequest
	case component.KindUnknownComponent:
		return http.StatusNotFound
	case component.KindNoRootNode, component.KindRootHasContainer:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
