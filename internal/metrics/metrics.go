package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

var (
	OrderSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_submissions_total",
			Help:      "Order submissions sent by the cart view, by result",
		},
		[]string{"result"},
	)

	OrderValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_validation_failures_total",
			Help:      "Order requests rejected because the cart total is below the minimum",
		},
	)

	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_created_total",
			Help:      "Orders persisted by the order intake",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_ms",
			Help:      "Duration of HTTP requests in ms",
			Buckets:   []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func Attach(router *mux.Router) {
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}
