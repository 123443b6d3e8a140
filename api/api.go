// Package api implements the read-only HTTP surface: three GET
// endpoints mapping a URL path to a KV key, each with its own
// Cache-Control policy, plus ETag/conditional-GET support for
// realtime status.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"caltrain.dev/transit/kvstore"
	"caltrain.dev/transit/model"
)

// Router serves /api/schedule, /api/meta, /api/realtime and a plain
// "ok" on GET /healthz, and answers OPTIONS on any path with
// permissive CORS. Every other method or path gets a plain 404.
type Router struct {
	Store  kvstore.Store
	Logger *zap.Logger
}

func NewRouter(store kvstore.Store, logger *zap.Logger) *Router {
	return &Router{Store: store, Logger: logger}
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	router.Logger.Debug("request received", zap.String("request_id", requestID), zap.String("method", r.Method), zap.String("path", r.URL.Path))

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	switch r.URL.Path {
	case "/api/schedule":
		router.serveKey(w, r, kvstore.KeyScheduleData, "public, max-age=3600", "No schedule data")
	case "/api/meta":
		router.serveMeta(w, r)
	case "/api/realtime":
		router.serveRealtime(w, r)
	case "/healthz":
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	default:
		http.NotFound(w, r)
	}
}

func (router *Router) serveKey(w http.ResponseWriter, r *http.Request, key, cacheControl, missingMsg string) {
	entry, ok, err := router.Store.Get(r.Context(), key)
	if err != nil {
		router.Logger.Error("kv read failed", zap.String("key", key), zap.Error(err))
		writeNotFound(w, missingMsg)
		return
	}
	if !ok {
		writeNotFound(w, missingMsg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.Write(entry.Value)
}

// serveMeta serves schedule:meta decorated with realtimeAge, the
// number of seconds since the last published realtime feed
// timestamp, derived from realtime:status's own metadata rather than
// stored on schedule:meta.
func (router *Router) serveMeta(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := router.Store.Get(r.Context(), kvstore.KeyScheduleMeta)
	if err != nil {
		router.Logger.Error("kv read failed", zap.String("key", kvstore.KeyScheduleMeta), zap.Error(err))
		writeNotFound(w, "No metadata")
		return
	}
	if !ok {
		writeNotFound(w, "No metadata")
		return
	}

	var meta model.ScheduleMeta
	if err := json.Unmarshal(entry.Value, &meta); err != nil {
		router.Logger.Error("decoding schedule:meta failed", zap.Error(err))
		writeNotFound(w, "No metadata")
		return
	}

	if rt, ok, err := router.Store.Get(r.Context(), kvstore.KeyRealtimeStatus); err == nil && ok {
		if ts, err := strconv.ParseInt(rt.Metadata["t"], 10, 64); err == nil {
			age := time.Now().Unix() - ts
			meta.RealtimeAge = &age
		}
	}

	body, err := json.Marshal(meta)
	if err != nil {
		router.Logger.Error("encoding schedule:meta failed", zap.Error(err))
		writeNotFound(w, "No metadata")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write(body)
}

func (router *Router) serveRealtime(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := router.Store.Get(r.Context(), kvstore.KeyRealtimeStatus)
	if err != nil {
		router.Logger.Error("kv read failed", zap.String("key", kvstore.KeyRealtimeStatus), zap.Error(err))
		writeNotFound(w, "No realtime data")
		return
	}
	if !ok {
		writeNotFound(w, "No realtime data")
		return
	}

	etag := fmt.Sprintf(`W/"%s"`, entry.Metadata["t"])

	w.Header().Set("Cache-Control", "public, max-age=30")
	w.Header().Set("ETag", etag)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(entry.Value)
}

func writeNotFound(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
