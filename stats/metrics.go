package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Stats to prometheus. Global fields are read live;
// per-thread totals come from the last Publish.
type Collector struct {
	s *Stats

	globalDesc *prometheus.Desc
	totalDesc  *prometheus.Desc
	p99Desc    *prometheus.Desc
}

func NewCollector(s *Stats) *Collector {
	return &Collector{
		s: s,
		globalDesc: prometheus.NewDesc("txnbed_global", "Counter of shared statistics fields.",
			[]string{"field"}, nil),
		totalDesc: prometheus.NewDesc("txnbed_thread_total", "Per-thread fields summed at the last publish.",
			[]string{"field"}, nil),
		p99Desc: prometheus.NewDesc("txnbed_collection_p99", "99th percentile of sample collections at the last publish.",
			[]string{"field"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.globalDesc
	ch <- c.totalDesc
	ch <- c.p99Desc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for f := GlobalField(0); f < numGlobalFields; f++ {
		ch <- prometheus.MustNewConstMetric(c.globalDesc, prometheus.CounterValue,
			float64(c.s.Global(f)), f.String())
	}
	sum := c.s.Published()
	if sum == nil {
		return
	}
	for k, v := range sum.Totals {
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, v, k)
	}
	for k, d := range sum.Collections {
		ch <- prometheus.MustNewConstMetric(c.p99Desc, prometheus.GaugeValue, d.P99, k)
	}
}
