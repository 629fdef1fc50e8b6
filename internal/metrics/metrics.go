// Package metrics counts what each role moved over the wire. A one-shot process has no
// scrape window, so the registry is flushed to a node-exporter textfile on exit.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hellotcp"

// Roles used as the "role" label.
const (
	RoleServer = "server"
	RoleClient = "client"
)

type Collector struct {
	registry *prometheus.Registry

	messagesTotal    *prometheus.CounterVec
	bytesTotal       *prometheus.CounterVec
	transferErrors   *prometheus.CounterVec
	setupFailures    *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Messages sent or received, by role and direction.",
			},
			[]string{"role", "direction"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Payload bytes sent or received, by role and direction.",
			},
			[]string{"role", "direction"},
		),
		transferErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfer_errors_total",
				Help:      "Send or receive failures that did not stop the exchange.",
			},
			[]string{"role", "op"},
		),
		setupFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "setup_failures_total",
				Help:      "Fatal socket setup failures.",
			},
			[]string{"role", "op"},
		),
		exchangeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exchange_duration_seconds",
				Help:      "Time from connection established to connection closed.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"role"},
		),
	}

	c.registry.MustRegister(
		c.messagesTotal,
		c.bytesTotal,
		c.transferErrors,
		c.setupFailures,
		c.exchangeDuration,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) MessageSent(role string, size int) {
	c.messagesTotal.WithLabelValues(role, "sent").Inc()
	c.bytesTotal.WithLabelValues(role, "sent").Add(float64(size))
}

func (c *Collector) MessageReceived(role string, size int) {
	c.messagesTotal.WithLabelValues(role, "received").Inc()
	c.bytesTotal.WithLabelValues(role, "received").Add(float64(size))
}

func (c *Collector) TransferError(role, op string) {
	c.transferErrors.WithLabelValues(role, op).Inc()
}

func (c *Collector) SetupFailure(role, op string) {
	c.setupFailures.WithLabelValues(role, op).Inc()
}

func (c *Collector) ObserveExchange(role string, seconds float64) {
	c.exchangeDuration.WithLabelValues(role).Observe(seconds)
}

// WriteTextfile writes every collected metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
