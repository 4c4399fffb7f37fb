package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fairdistricts/mapmetrics/internal/model"
	"github.com/fairdistricts/mapmetrics/internal/summary"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve district map metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		seeds, err := seedProvider()
		if err != nil {
			return err
		}
		asm := summary.New(st, seeds)

		r := chi.NewRouter()
		r.Use(requestID)
		r.Use(accessLog)
		if cfg.Server.RateLimitRPS > 0 {
			limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), int(cfg.Server.RateLimitRPS)*2)
			r.Use(rateLimit(limiter))
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/metrics", func(w http.ResponseWriter, req *http.Request) {
			results, err := asm.SummarizeAll(req.Context(), model.StateCodes)
			if err != nil {
				serveError(w, req, err)
				return
			}
			writeJSON(w, http.StatusOK, results)
		})

		r.Get("/api/metrics/{state}", func(w http.ResponseWriter, req *http.Request) {
			state := strings.ToUpper(chi.URLParam(req, "state"))
			s, err := asm.Summarize(req.Context(), state)
			if err != nil {
				serveError(w, req, err)
				return
			}
			writeJSON(w, http.StatusOK, s)
		})

		r.Get("/api/geometry/{state}", func(w http.ResponseWriter, req *http.Request) {
			state := strings.ToUpper(chi.URLParam(req, "state"))
			s, err := asm.Summarize(req.Context(), state)
			if err != nil {
				serveError(w, req, err)
				return
			}
			set, err := st.Geometry(req.Context(), state)
			if err != nil {
				serveError(w, req, err)
				return
			}
			writeJSON(w, http.StatusOK, geometryResponse{
				State:    state,
				Metrics:  s,
				Geometry: featureCollection(set),
			})
		})

		// Static dashboard assets.
		staticDir := cfg.Server.StaticDir
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
		})
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("driver", cfg.Data.Driver),
			zap.String("static_dir", staticDir),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// geometryResponse pairs a state's summary with its district boundaries.
// Geometry is null when the state supplied none.
type geometryResponse struct {
	State    string                     `json:"state"`
	Metrics  *model.StateSummary        `json:"metrics"`
	Geometry *geojson.FeatureCollection `json:"geometry"`
}

// featureCollection converts a geometry set to GeoJSON, or nil when absent.
func featureCollection(set *model.GeometrySet) *geojson.FeatureCollection {
	if set == nil {
		return nil
	}
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(set.Shapes))}
	for _, s := range set.Shapes {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   s.Geom,
			Properties: map[string]any{"district": s.District},
		})
	}
	return fc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serveError maps engine failures to a transport-level error response. The
// engine itself never fails on missing data; reaching this means the backing
// store is unreachable.
func serveError(w http.ResponseWriter, req *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("path", req.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "metrics unavailable"})
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, req)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		zap.L().Info("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", ww.Header().Get("X-Request-ID")),
		)
	})
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
