// Package metrics holds the prometheus collectors of the interpreter and
// serves them over http.
package metrics

import (
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zutxo/sigma/common/log"
)

var (
	// PrivateMetrics about the internal world (go process, private stuff)
	PrivateMetrics = prometheus.NewRegistry()
	// InterpreterMetrics about reductions, proofs and verifications
	InterpreterMetrics = prometheus.NewRegistry()

	// ReductionCounter counts script reductions by outcome
	ReductionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigma_reductions_total",
		Help: "Number of scripts reduced to a sigma proposition",
	}, []string{"result"})
	// ProofCounter counts proving calls by outcome
	ProofCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigma_proofs_total",
		Help: "Number of proofs generated",
	}, []string{"result"})
	// VerificationCounter counts verification calls by outcome
	VerificationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigma_verifications_total",
		Help: "Number of proofs verified",
	}, []string{"result"})
	// CostHistogram records the cost charged per call
	CostHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigma_call_cost",
		Help:    "Cost charged per call, in JitCost units",
		Buckets: prometheus.ExponentialBuckets(100, 4, 10),
	}, []string{"call"})
	// BatchLatency records how long verifying a batch takes
	BatchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigma_batch_duration_seconds",
		Help:    "histogram of batch verification latencies",
		Buckets: prometheus.DefBuckets,
	})
	// BatchInFlight is the number of inputs being verified
	BatchInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sigma_batch_in_flight",
		Help: "Number of inputs currently being verified",
	})
	// TreeCacheCounter counts tree cache lookups by outcome
	TreeCacheCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigma_tree_cache_lookups_total",
		Help: "Number of tree cache lookups",
	}, []string{"result"})

	bindOnce sync.Once
)

func bindMetrics() {
	bindOnce.Do(func() {
		// The private go-level metrics live in private.
		PrivateMetrics.MustRegister(prometheus.NewGoCollector())
		PrivateMetrics.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

		interp := []prometheus.Collector{
			ReductionCounter,
			ProofCounter,
			VerificationCounter,
			CostHistogram,
			BatchLatency,
			BatchInFlight,
			TreeCacheCounter,
		}
		for _, c := range interp {
			InterpreterMetrics.MustRegister(c)
			PrivateMetrics.MustRegister(c)
		}
	})
}

// Handler exposes PrivateMetrics, typically mounted at /metrics.
func Handler() http.Handler {
	bindMetrics()
	return promhttp.HandlerFor(PrivateMetrics, promhttp.HandlerOpts{Registry: PrivateMetrics})
}

// InterpreterHandler exposes InterpreterMetrics only.
func InterpreterHandler() http.Handler {
	bindMetrics()
	return promhttp.HandlerFor(InterpreterMetrics, promhttp.HandlerOpts{Registry: InterpreterMetrics})
}

// Start starts a prometheus metrics server with debug endpoints.
func Start(l log.Logger, metricsBind string, pprof http.Handler) (net.Listener, error) {
	bindMetrics()

	lis, err := net.Listen("tcp", metricsBind)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	l.Debugw("metrics listener started", "at", lis.Addr().String())

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.Handle("/metrics/interpreter", InterpreterHandler())
	if pprof != nil {
		mux.Handle("/debug/pprof/", http.StripPrefix("/debug/pprof", pprof))
	}
	mux.HandleFunc("/debug/gc", func(w http.ResponseWriter, req *http.Request) {
		runtime.GC()
		fmt.Fprintf(w, "GC run complete")
	})

	s := &http.Server{Addr: lis.Addr().String(), Handler: mux}
	go func() {
		l.Warnw("metrics listener finished", "err", s.Serve(lis))
	}()
	return lis, nil
}
