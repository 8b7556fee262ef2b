// Package stats collects per-thread and global counters for a run.
//
// Every worker thread owns one slot and is its only writer; the reporting
// side reads the slots once the workers have quiesced. Fields shared across
// threads go through the atomic global path instead. When the facility is
// disabled every update is a no-op.
package stats

import (
	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap-incubator/txnbed/util/mem"
	uatomic "go.uber.org/atomic"
)

// ThreadStats is the slot of one worker thread.
type ThreadStats struct {
	vals [numFields]float64
	tmp  [numFields]float64
	arrs [numArrFields][]float64
}

type Stats struct {
	enabled bool
	slots   []*mem.Block[ThreadStats]
	global  [numGlobalFields]uatomic.Uint64

	published uatomic.Value
}

// New sizes the table to the configured thread count. Slots are padded to
// whole cache lines when partitioned allocation is on.
func New(conf *config.Config) *Stats {
	return &Stats{
		enabled: conf.StatsEnable,
		slots:   mem.AllocBlocks[ThreadStats](int(conf.ThreadCnt), 1, mem.OptionsFromConfig(conf)),
	}
}

func (s *Stats) Enabled() bool {
	return s.enabled
}

func (s *Stats) Threads() int {
	return len(s.slots)
}

func (s *Stats) slot(tid uint64) *ThreadStats {
	return &s.slots[tid].Items()[0]
}

// Set overwrites field of thread tid.
func (s *Stats) Set(tid uint64, f Field, v float64) {
	if !s.enabled {
		return
	}
	s.slot(tid).vals[f] = v
}

// Inc accumulates delta into field of thread tid.
func (s *Stats) Inc(tid uint64, f Field, delta float64) {
	if !s.enabled {
		return
	}
	s.slot(tid).vals[f] += delta
}

// IncArr appends a sample to the collection f of thread tid.
func (s *Stats) IncArr(tid uint64, f ArrField, v float64) {
	if !s.enabled {
		return
	}
	st := s.slot(tid)
	st.arrs[f] = append(st.arrs[f], v)
}

// IncTmp accumulates into the temporary counters of thread tid. They only
// reach the slot on CommitTmp, which lets a transaction discard the work it
// did before aborting.
func (s *Stats) IncTmp(tid uint64, f Field, delta float64) {
	if !s.enabled {
		return
	}
	s.slot(tid).tmp[f] += delta
}

// CommitTmp folds the temporary counters of tid into its slot.
func (s *Stats) CommitTmp(tid uint64) {
	if !s.enabled {
		return
	}
	st := s.slot(tid)
	for i := range st.tmp {
		st.vals[i] += st.tmp[i]
		st.tmp[i] = 0
	}
}

// ClearTmp drops the temporary counters of tid.
func (s *Stats) ClearTmp(tid uint64) {
	if !s.enabled {
		return
	}
	st := s.slot(tid)
	st.tmp = [numFields]float64{}
}

// IncGlobal atomically accumulates delta into a shared field.
func (s *Stats) IncGlobal(f GlobalField, delta uint64) {
	if !s.enabled {
		return
	}
	s.global[f].Add(delta)
}

// Get reads a per-thread field. Only safe once tid's writer is quiesced.
func (s *Stats) Get(tid uint64, f Field) float64 {
	return s.slot(tid).vals[f]
}

// Samples returns the collection f of tid. Only safe once tid's writer is quiesced.
func (s *Stats) Samples(tid uint64, f ArrField) []float64 {
	return s.slot(tid).arrs[f]
}

func (s *Stats) Global(f GlobalField) uint64 {
	return s.global[f].Load()
}

// Reset zeroes every slot and global field.
func (s *Stats) Reset() {
	for _, b := range s.slots {
		b.Items()[0] = ThreadStats{}
	}
	for i := range s.global {
		s.global[i].Store(0)
	}
}

// Close releases the slots. The Stats must not be used afterwards.
func (s *Stats) Close() {
	mem.ReleaseBlocks(s.slots)
}
