package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	require.Nil(t, NewDefaultConfig().Validate())
	require.Nil(t, NewTestConfig().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no threads", func(c *Config) { c.ThreadCnt = 0 }},
		{"no partitions", func(c *Config) { c.PartCnt = 0 }},
		{"node out of range", func(c *Config) { c.NodeID = 3 }},
		{"cc alg", func(c *Config) { c.CCAlg = "SILO" }},
		{"workload", func(c *Config) { c.Workload = "TPCH" }},
		{"mode", func(c *Config) { c.Mode = "FAST" }},
		{"cache line", func(c *Config) { c.CacheLine = 48 }},
		{"frame size", func(c *Config) { c.MaxFrameSize = "lots" }},
		{"write rate", func(c *Config) { c.TupWriteRate = 1.5 }},
		{"zipf theta", func(c *Config) { c.ZipfTheta = 1 }},
		{"table size", func(c *Config) { c.SynthTableSize = 1 }},
		{"table smaller than partitions", func(c *Config) { c.SynthTableSize, c.PartCnt = 4, 8 }},
	}
	for _, tc := range cases {
		c := NewTestConfig()
		tc.mutate(c)
		assert.NotNil(t, c.Validate(), tc.name)
	}
}

func TestFrameLimit(t *testing.T) {
	c := NewTestConfig()
	n, err := c.FrameLimit()
	require.Nil(t, err)
	assert.Equal(t, 4*KB, n)

	c.MaxFrameSize = "2MiB"
	n, err = c.FrameLimit()
	require.Nil(t, err)
	assert.Equal(t, 2*MB, n)
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "txnbed-config")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "node.toml")
	data := `
node-id = 1
node-cnt = 2
thread-cnt = 8
cc-alg = "calvin"
workload = "ycsb"
stats-enable = false
max-frame-size = "128KiB"
`
	require.Nil(t, ioutil.WriteFile(path, []byte(data), 0644))

	conf, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, uint64(1), conf.NodeID)
	assert.Equal(t, uint64(8), conf.ThreadCnt)
	assert.Equal(t, Calvin, conf.CCAlg)
	assert.Equal(t, YCSB, conf.Workload)
	assert.False(t, conf.StatsEnable)
	// Unset keys keep their defaults.
	assert.Equal(t, uint64(64), conf.CacheLine)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.NotNil(t, err)
}
