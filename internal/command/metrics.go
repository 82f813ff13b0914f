package command

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse tiers, used as the "tier" label.
const (
	tierExact  = "exact"
	tierFuzzy  = "fuzzy"
	tierIntent = "intent"
	tierNone   = "none"
)

var parsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pa",
	Subsystem: "parser",
	Name:      "parses_total",
	Help:      "Parsed input lines by the tier that resolved them.",
}, []string{"tier"})

func observeParse(tier string) {
	parsesTotal.WithLabelValues(tier).Inc()
}

// WriteMetrics writes the process's counters to path in the Prometheus text
// exposition format, for pickup by a node_exporter textfile collector.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
