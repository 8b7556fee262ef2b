package stats

import (
	"fmt"
	"io"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"github.com/pingcap-incubator/txnbed/log"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Dist summarises one collection across all threads.
type Dist struct {
	Count int
	Avg   float64
	P50   float64
	P99   float64
	Max   float64
}

// Summary is the aggregated view produced after a run.
type Summary struct {
	Totals      map[string]float64
	Globals     map[string]uint64
	Collections map[string]Dist
}

// Report aggregates every slot. Call it after the workers have quiesced.
func (s *Stats) Report() *Summary {
	sum := &Summary{
		Totals:      make(map[string]float64, numFields),
		Globals:     make(map[string]uint64, numGlobalFields),
		Collections: make(map[string]Dist, numArrFields),
	}
	for f := Field(0); f < numFields; f++ {
		var total float64
		for tid := range s.slots {
			total += s.Get(uint64(tid), f)
		}
		sum.Totals[f.String()] = total
	}
	for f := GlobalField(0); f < numGlobalFields; f++ {
		sum.Globals[f.String()] = s.Global(f)
	}
	for f := ArrField(0); f < numArrFields; f++ {
		var all []float64
		for tid := range s.slots {
			all = append(all, s.Samples(uint64(tid), f)...)
		}
		sum.Collections[f.String()] = distOf(all)
	}
	return sum
}

func distOf(data []float64) Dist {
	if len(data) == 0 {
		return Dist{}
	}
	d := Dist{Count: len(data)}
	d.Avg, _ = mstats.Mean(data)
	d.P50, _ = mstats.Percentile(data, 50)
	d.P99, _ = mstats.Percentile(data, 99)
	d.Max, _ = mstats.Max(data)
	return d
}

// Publish reports and keeps the summary for the prometheus collector.
func (s *Stats) Publish() *Summary {
	sum := s.Report()
	s.published.Store(sum)
	return sum
}

// Published returns the last published summary or nil.
func (s *Stats) Published() *Summary {
	sum, _ := s.published.Load().(*Summary)
	return sum
}

func sortedKeys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// summaryWriter keeps the first write error and skips later writes.
type summaryWriter struct {
	w   io.Writer
	err error
}

func (sw *summaryWriter) printf(format string, args ...interface{}) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(sw.w, format, args...)
}

// Print writes the summary in the "[summary] k=v, ..." form.
func (sum *Summary) Print(w io.Writer) error {
	sw := &summaryWriter{w: w}
	sw.printf("[summary]")
	for _, k := range sortedKeys(sum.Totals) {
		sw.printf(" %s=%f,", k, sum.Totals[k])
	}
	for _, k := range sortedKeys(sum.Globals) {
		sw.printf(" %s=%d,", k, sum.Globals[k])
	}
	for _, k := range sortedKeys(sum.Collections) {
		d := sum.Collections[k]
		sw.printf(" %s_cnt=%d, %s_avg=%f, %s_50=%f, %s_99=%f, %s_max=%f,",
			k, d.Count, k, d.Avg, k, d.P50, k, d.P99, k, d.Max)
	}
	sw.printf("\n")
	return errors.Trace(sw.err)
}

func (sum *Summary) logFields() []zap.Field {
	fields := make([]zap.Field, 0, len(sum.Totals)+len(sum.Globals)+2*len(sum.Collections))
	for _, k := range sortedKeys(sum.Totals) {
		fields = append(fields, zap.Float64(k, sum.Totals[k]))
	}
	for _, k := range sortedKeys(sum.Globals) {
		fields = append(fields, zap.Uint64(k, sum.Globals[k]))
	}
	for _, k := range sortedKeys(sum.Collections) {
		d := sum.Collections[k]
		fields = append(fields, zap.Int(k+"_cnt", d.Count), zap.Float64(k+"_99", d.P99))
	}
	return fields
}

// Log emits the summary as one structured record, fields in a stable order.
func (sum *Summary) Log() {
	log.Info("run summary", sum.logFields()...)
}
