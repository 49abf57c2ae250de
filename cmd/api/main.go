package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"nps-insights-go/internal/aggregator"
	"nps-insights-go/internal/classifier"
	"nps-insights-go/internal/config"
	"nps-insights-go/internal/dataset"
	"nps-insights-go/internal/logger"
	"nps-insights-go/internal/metrics"
	"nps-insights-go/internal/processor"
	"nps-insights-go/internal/types"
	"nps-insights-go/internal/window"
)

const maxUploadBytes = 32 << 20

type server struct {
	cfg         *config.Config
	uploadLimit int64
	log         *logger.Logger
	reporter    *processor.Reporter
	metrics     *metrics.Manager
	data        dataset.Dataset
	summary     dataset.Summary
}

func main() {
	cfg, err := config.Load()
	log := logger.NewWithOptions(logger.Options{Environment: envOf(cfg), Level: levelOf(cfg)})
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.WithField("service", "nps-insights-go").Info("starting service")

	m := metrics.New()
	clf, backend, err := classifier.New(context.Background(), cfg.Classifier)
	if err != nil {
		log.WithError(err).Fatal("failed to build classifier")
	}
	m.SetBackendReady(backend.Name, backend.Ready)
	if backend.Degraded {
		log.WithField("backend", backend.Name).WithField("reason", backend.Error).Warn("classifier running degraded")
	}

	s := &server{
		cfg:         cfg,
		uploadLimit: maxUploadBytes,
		log:         log,
		metrics:     m,
		reporter: processor.NewReporter(aggregator.FromConfig(cfg.NPS), clf, backend,
			processor.WithMetrics(m)),
	}

	// preload dataset; the service still starts without one and accepts uploads
	log.WithField("dataset_path", cfg.Dataset.Path).Info("loading dataset")
	if ds, err := dataset.LoadFile(cfg.Dataset.Path); err != nil {
		log.WithError(err).Warn("dataset not loaded, only POST /report will work")
	} else {
		s.data = ds
		s.summary = dataset.Summarize(ds)
		processor.ObserveDataset(m, ds)
		log.WithField("total_records", s.summary.TotalRecords).Info("dataset loaded")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/summary", s.handleSummary)
	mux.HandleFunc("/report", s.handleReport)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return mux
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "summary")
	reqLog.Info("summary request received")
	writeJSON(w, http.StatusOK, s.summary, reqLog)
}

// handleReport serves GET over the preloaded dataset and POST over an
// uploaded CSV/XLSX body. Query: range, start, end, entity, format (POST).
func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "report")
	q := r.URL.Query()

	sel, err := window.ParseSelector(q.Get("range"))
	if err != nil {
		reqLog.WithError(err).Warn("bad range")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bounds, err := window.ParseBounds(q.Get("start"), q.Get("end"), dataset.Location)
	if err != nil {
		reqLog.WithError(err).Warn("bad bounds")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ds := s.data
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		format, err := dataset.FormatFromName(q.Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ds, err = dataset.Parse(http.MaxBytesReader(w, r.Body, s.uploadLimit), format)
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
				err = fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
			}
			reqLog.WithError(err).Warn("upload rejected")
			http.Error(w, err.Error(), status)
			return
		}
		processor.ObserveDataset(s.metrics, ds)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqLog = reqLog.WithField("range", sel).WithField("records", len(ds.Records))

	rep, err := s.reporter.RunReport(r.Context(), ds, sel, bounds)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrInvalidWindow) {
			status = http.StatusBadRequest
		}
		reqLog.WithError(err).Warn("report failed")
		http.Error(w, err.Error(), status)
		return
	}
	if entity := q.Get("entity"); entity != "" {
		rep.ClassifiedComments = processor.CommentsFor(rep.ClassifiedComments, entity)
	}
	reqLog.WithField("duration_ms", rep.DurationMs).Info("report served")
	writeJSON(w, http.StatusOK, rep, reqLog)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func envOf(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Environment
}

func levelOf(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Log.Level
}
