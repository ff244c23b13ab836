// Package metrics exposes Prometheus counters for card registration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Batch line outcomes.
const (
	LineCreated   = "created"
	LineDuplicate = "duplicate"
	LineMalformed = "malformed"
)

// MetricsCollector is the recording interface used by the service layer.
type MetricsCollector interface {
	RecordCardRegistered(source string)
	RecordBatchLines(outcome string, count int)
	RecordBatchFile(status string)
}

// Collector records registration metrics in Prometheus.
type Collector struct {
	cardsRegistered *prometheus.CounterVec
	batchLines      *prometheus.CounterVec
	batchFiles      *prometheus.CounterVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cardsRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardregistry_cards_registered_total",
			Help: "Cards registered, by registration source.",
		}, []string{"source"}),
		batchLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardregistry_batch_lines_total",
			Help: "Batch detail lines processed, by outcome.",
		}, []string{"outcome"}),
		batchFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardregistry_batch_files_total",
			Help: "Batch files processed, by status.",
		}, []string{"status"}),
	}

	reg.MustRegister(c.cardsRegistered, c.batchLines, c.batchFiles)
	return c
}

// RecordCardRegistered counts one created card.
func (c *Collector) RecordCardRegistered(source string) {
	c.cardsRegistered.WithLabelValues(source).Inc()
}

// RecordBatchLines adds count lines with the given outcome.
func (c *Collector) RecordBatchLines(outcome string, count int) {
	if count <= 0 {
		return
	}
	c.batchLines.WithLabelValues(outcome).Add(float64(count))
}

// RecordBatchFile counts one processed batch file.
func (c *Collector) RecordBatchFile(status string) {
	c.batchFiles.WithLabelValues(status).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordCardRegistered(string)  {}
func (Noop) RecordBatchLines(string, int) {}
func (Noop) RecordBatchFile(string)       {}
