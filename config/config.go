package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
	"github.com/pingcap/errors"
)

// CCAlg names the concurrency control protocol a deployment runs.
type CCAlg string

const (
	NoWait    CCAlg = "NO_WAIT"
	WaitDie   CCAlg = "WAIT_DIE"
	Timestamp CCAlg = "TIMESTAMP"
	MVCC      CCAlg = "MVCC"
	OCC       CCAlg = "OCC"
	VLL       CCAlg = "VLL"
	Calvin    CCAlg = "CALVIN"
)

// Workload names the benchmark driving the cluster.
type Workload string

const (
	YCSB Workload = "YCSB"
	TPCC Workload = "TPCC"
	PPS  Workload = "PPS"
)

// Mode selects the execution mode of the servers.
type Mode string

const (
	NormalMode  Mode = "NORMAL"
	QryOnlyMode Mode = "QRY_ONLY"
	SetupMode   Mode = "SETUP"
)

type Config struct {
	NodeID    uint64   `toml:"node-id"`
	NodeCnt   uint64   `toml:"node-cnt"`
	ThreadCnt uint64   `toml:"thread-cnt"`
	PartCnt   uint64   `toml:"part-cnt"`
	CCAlg     CCAlg    `toml:"cc-alg"`
	Workload  Workload `toml:"workload"`
	Mode      Mode     `toml:"mode"`
	LogLevel  string   `toml:"log-level"`

	StatsEnable bool `toml:"stats-enable"`

	// PartAlloc gives every partition its own allocator and pads blocks to
	// whole cache lines when MemPad is also set.
	PartAlloc   bool   `toml:"part-alloc"`
	ThreadAlloc bool   `toml:"thread-alloc"`
	MemPad      bool   `toml:"mem-pad"`
	CacheLine   uint64 `toml:"cache-line"`

	// Human readable sizes, e.g. "64KiB".
	MaxFrameSize string `toml:"max-frame-size"`
	MsgQueueSize int    `toml:"msg-queue-size"`

	ReqPerQuery    uint64  `toml:"req-per-query"`
	SynthTableSize uint64  `toml:"synth-table-size"`
	TupWriteRate   float64 `toml:"tup-write-perc"`
	ZipfTheta      float64 `toml:"zipf-theta"`
}

const (
	KB uint64 = 1024
	MB uint64 = 1024 * 1024
)

func (c *Config) Validate() error {
	if c.ThreadCnt == 0 {
		return fmt.Errorf("thread count must be greater than 0")
	}
	if c.PartCnt == 0 {
		return fmt.Errorf("partition count must be greater than 0")
	}
	if c.NodeCnt == 0 || c.NodeID >= c.NodeCnt {
		return fmt.Errorf("node id %d out of range for %d nodes", c.NodeID, c.NodeCnt)
	}
	switch c.CCAlg {
	case NoWait, WaitDie, Timestamp, MVCC, OCC, VLL, Calvin:
	default:
		return fmt.Errorf("unknown cc algorithm %q", c.CCAlg)
	}
	switch c.Workload {
	case YCSB, TPCC, PPS:
	default:
		return fmt.Errorf("unknown workload %q", c.Workload)
	}
	switch c.Mode {
	case NormalMode, QryOnlyMode, SetupMode:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.CacheLine == 0 || c.CacheLine&(c.CacheLine-1) != 0 {
		return fmt.Errorf("cache line size %d must be a power of two", c.CacheLine)
	}
	if _, err := c.FrameLimit(); err != nil {
		return err
	}
	if c.TupWriteRate < 0 || c.TupWriteRate > 1 {
		return fmt.Errorf("write percentage %v must be within [0, 1]", c.TupWriteRate)
	}
	if c.ZipfTheta < 0 || c.ZipfTheta >= 1 {
		return fmt.Errorf("zipf theta %v must be within [0, 1)", c.ZipfTheta)
	}
	if c.SynthTableSize < 2 || c.SynthTableSize < c.PartCnt {
		return fmt.Errorf("table size %d is too small for %d partitions", c.SynthTableSize, c.PartCnt)
	}
	return nil
}

// FrameLimit returns MaxFrameSize in bytes.
func (c *Config) FrameLimit() (uint64, error) {
	n, err := units.RAMInBytes(c.MaxFrameSize)
	if err != nil {
		return 0, errors.Annotatef(err, "invalid max-frame-size %q", c.MaxFrameSize)
	}
	if n <= 0 {
		return 0, errors.Errorf("max-frame-size must be positive, got %q", c.MaxFrameSize)
	}
	return uint64(n), nil
}

func (c *Config) String() string {
	return fmt.Sprintf("node %d/%d threads=%d parts=%d cc=%s workload=%s mode=%s stats=%v",
		c.NodeID, c.NodeCnt, c.ThreadCnt, c.PartCnt, c.CCAlg, c.Workload, c.Mode, c.StatsEnable)
}

func getLogLevel() (logLevel string) {
	logLevel = "info"
	if l := os.Getenv("LOG_LEVEL"); len(l) != 0 {
		logLevel = l
	}
	return
}

// Load reads a TOML file on top of the default configuration.
func Load(path string) (*Config, error) {
	conf := NewDefaultConfig()
	if path == "" {
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, errors.Annotatef(err, "load config %s", path)
	}
	conf.CCAlg = CCAlg(strings.ToUpper(string(conf.CCAlg)))
	conf.Workload = Workload(strings.ToUpper(string(conf.Workload)))
	conf.Mode = Mode(strings.ToUpper(string(conf.Mode)))
	return conf, conf.Validate()
}

func NewDefaultConfig() *Config {
	return &Config{
		NodeCnt:        1,
		ThreadCnt:      4,
		PartCnt:        4,
		CCAlg:          WaitDie,
		Workload:       YCSB,
		Mode:           NormalMode,
		LogLevel:       getLogLevel(),
		StatsEnable:    true,
		PartAlloc:      false,
		MemPad:         true,
		CacheLine:      64,
		MaxFrameSize:   "64KiB",
		MsgQueueSize:   128,
		ReqPerQuery:    10,
		SynthTableSize: 1 << 24,
		TupWriteRate:   0.5,
		ZipfTheta:      0.6,
	}
}

func NewTestConfig() *Config {
	return &Config{
		NodeCnt:        1,
		ThreadCnt:      2,
		PartCnt:        2,
		CCAlg:          WaitDie,
		Workload:       YCSB,
		Mode:           NormalMode,
		LogLevel:       getLogLevel(),
		StatsEnable:    true,
		PartAlloc:      true,
		MemPad:         true,
		CacheLine:      64,
		MaxFrameSize:   "4KiB",
		MsgQueueSize:   16,
		ReqPerQuery:    4,
		SynthTableSize: 1024,
		TupWriteRate:   0.5,
		ZipfTheta:      0.6,
	}
}
