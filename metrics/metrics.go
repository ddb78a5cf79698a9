// Package metrics instruments a storage.Storage with prometheus metrics
package metrics

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jrife/txnkv/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "txnkv"

// Collector holds the metrics of an instrumented store
type Collector struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	depth      prometheus.Gauge
}

// NewCollector creates a collector whose metrics are registered with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of storage operations",
			},
			[]string{"operation"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed storage operations",
			},
			[]string{"operation", "error"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of storage operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		depth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "transaction_depth",
				Help:      "Number of open nested transactions",
			},
		),
	}
}

func (collector *Collector) observe(operation string, start time.Time, err error) {
	collector.operations.WithLabelValues(operation).Inc()
	collector.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		collector.errors.WithLabelValues(operation, errorLabel(err)).Inc()
	}
}

// errorLabel keeps the error label bounded to the known failure kinds
func errorLabel(err error) string {
	switch {
	case errors.Is(err, storage.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, storage.ErrDepthExceeded):
		return "depth_exceeded"
	case errors.Is(err, storage.ErrNoTransaction):
		return "no_transaction"
	case errors.Is(err, storage.ErrLockNotOwned):
		return "lock_not_owned"
	default:
		return "other"
	}
}

var _ storage.Storage = (*instrumented)(nil)

type instrumented struct {
	storage   storage.Storage
	collector *Collector
}

// Instrument returns a store that records every call made
// to s in collector
func Instrument(s storage.Storage, collector *Collector) storage.Storage {
	return &instrumented{storage: s, collector: collector}
}

// Get implements storage.Storage.Get
func (instrumented *instrumented) Get(key string) (string, bool) {
	defer instrumented.collector.observe("get", time.Now(), nil)

	return instrumented.storage.Get(key)
}

// Count implements storage.Storage.Count
func (instrumented *instrumented) Count(value string) int {
	defer instrumented.collector.observe("count", time.Now(), nil)

	return instrumented.storage.Count(value)
}

// Set implements storage.Storage.Set
func (instrumented *instrumented) Set(key, value string) (string, bool, error) {
	start := time.Now()
	previous, existed, err := instrumented.storage.Set(key, value)
	instrumented.collector.observe("set", start, err)

	return previous, existed, err
}

// Delete implements storage.Storage.Delete
func (instrumented *instrumented) Delete(key string) (string, bool, error) {
	start := time.Now()
	previous, existed, err := instrumented.storage.Delete(key)
	instrumented.collector.observe("delete", start, err)

	return previous, existed, err
}

// BeginTransaction implements storage.Storage.BeginTransaction
func (instrumented *instrumented) BeginTransaction() (int, error) {
	return instrumented.transition("begin", time.Now(), instrumented.storage.BeginTransaction)
}

// CommitTransaction implements storage.Storage.CommitTransaction
func (instrumented *instrumented) CommitTransaction() (int, error) {
	return instrumented.transition("commit", time.Now(), instrumented.storage.CommitTransaction)
}

// RollbackTransaction implements storage.Storage.RollbackTransaction
func (instrumented *instrumented) RollbackTransaction() (int, error) {
	return instrumented.transition("rollback", time.Now(), instrumented.storage.RollbackTransaction)
}

func (instrumented *instrumented) transition(operation string, start time.Time, fn func() (int, error)) (int, error) {
	depth, err := fn()
	instrumented.collector.observe(operation, start, err)

	if err == nil {
		instrumented.collector.depth.Set(float64(depth))
	}

	return depth, err
}

// Summary flattens the counters and gauges gathered from g into a
// map keyed by metric name and labels, as in name{label="value"}.
// Histograms contribute their sample count under name_count.
func Summary(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()

	if err != nil {
		return nil, err
	}

	summary := map[string]float64{}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := []string{}

			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"=\""+label.GetValue()+"\"")
			}

			sort.Strings(labels)
			suffix := ""

			if len(labels) > 0 {
				suffix = "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				summary[family.GetName()+suffix] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				summary[family.GetName()+suffix] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				summary[family.GetName()+"_count"+suffix] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	return summary, nil
}
