package transport

import (
	"runtime"
	"testing"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap-incubator/txnbed/stats"
	"github.com/pingcap-incubator/txnbed/transport/message"
	"github.com/pingcap-incubator/txnbed/txn"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	tp message.MsgType
	q  txn.Query
}

func newTestLoopback(t *testing.T, conf *config.Config) (*Loopback, *message.Codec, *stats.Stats) {
	codec := message.NewCodec(conf)
	st := stats.New(conf)
	l, err := NewLoopback(conf, codec, st)
	require.Nil(t, err)
	return l, codec, st
}

func TestLoopbackDelivers(t *testing.T) {
	conf := config.NewTestConfig()
	l, codec, st := newTestLoopback(t, conf)
	defer st.Close()

	out := make(chan received, 16)
	require.Nil(t, l.Register(1, 1, HandlerFunc(func(m *message.Message) {
		var r received
		r.tp = m.Type
		codec.CopyToQuery(m, &r.q)
		out <- r
	})))

	q := &txn.Query{
		TxnID:       42,
		PartitionID: 1,
		Timestamp:   9,
		Partitions:  []uint64{0, 1},
		Requests:    []txn.Request{{Type: txn.WR, Key: 100, Value: 3}},
	}
	m, err := codec.CreateFromQuery(q, message.MsgTypeClientQuery)
	require.Nil(t, err)
	require.Nil(t, l.Send(0, 1, m))
	codec.Release(m)

	fin := &txn.Query{TxnID: 42, PartitionID: 1, RC: txn.Commit, BatchID: 5}
	m, err = codec.CreateFromQuery(fin, message.MsgTypeRemoteFinish)
	require.Nil(t, err)
	require.Nil(t, l.Send(0, 1, m))
	codec.Release(m)

	l.Close()
	close(out)

	first := <-out
	assert.Equal(t, message.MsgTypeClientQuery, first.tp)
	assert.Equal(t, uint64(42), first.q.TxnID)
	assert.Equal(t, []uint64{0, 1}, first.q.Partitions)
	assert.Equal(t, q.Requests, first.q.Requests)

	second := <-out
	assert.Equal(t, message.MsgTypeRemoteFinish, second.tp)
	assert.Equal(t, txn.Commit, second.q.RC)
	assert.Equal(t, uint64(5), second.q.BatchID)

	assert.Equal(t, uint64(2), l.Sent())
	assert.Equal(t, uint64(2), l.Received())
	assert.Equal(t, float64(2), st.Get(0, stats.MsgSentCnt))
	assert.Equal(t, float64(2), st.Get(1, stats.MsgRcvCnt))
	assert.Equal(t, float64(2), st.Get(1, stats.MsgReleaseCnt))
	assert.Equal(t, st.Get(0, stats.MsgBytesSent), st.Get(1, stats.MsgBytesRcv))
	assert.Equal(t, uint64(2), st.Global(stats.GlobMsgCnt))
	assert.Len(t, st.Samples(1, stats.MsgSize), 2)
}

func TestLoopbackUnknownEndpoint(t *testing.T) {
	l, codec, st := newTestLoopback(t, config.NewTestConfig())
	defer st.Close()
	defer l.Close()

	m, err := codec.CreateEmpty(message.MsgTypeRemoteDone)
	require.Nil(t, err)
	assert.NotNil(t, l.Send(0, 3, m))
	assert.Equal(t, float64(0), st.Get(0, stats.MsgSentCnt))
}

func TestLoopbackDuplicateRegister(t *testing.T) {
	l, _, st := newTestLoopback(t, config.NewTestConfig())
	defer st.Close()
	defer l.Close()

	h := HandlerFunc(func(*message.Message) {})
	require.Nil(t, l.Register(0, 1, h))
	assert.NotNil(t, l.Register(0, 1, h))
}

func TestLoopbackFrameLimit(t *testing.T) {
	conf := config.NewTestConfig()
	conf.MaxFrameSize = "64B"
	l, codec, st := newTestLoopback(t, conf)
	defer st.Close()
	defer l.Close()
	require.Nil(t, l.Register(1, 1, HandlerFunc(func(*message.Message) {})))

	q := &txn.Query{TxnID: 1, Partitions: make([]uint64, 16)}
	m, err := codec.CreateFromQuery(q, message.MsgTypeClientQuery)
	require.Nil(t, err)
	err = l.Send(0, 1, m)
	assert.Equal(t, ErrFrameTooLarge, errors.Cause(err))
}

func TestLoopbackBadConfig(t *testing.T) {
	conf := config.NewTestConfig()
	conf.MaxFrameSize = "lots"
	_, err := NewLoopback(conf, message.NewCodec(conf), stats.New(conf))
	assert.NotNil(t, err)
}

func TestLoopbackSendAfterClose(t *testing.T) {
	l, codec, st := newTestLoopback(t, config.NewTestConfig())
	defer st.Close()
	require.Nil(t, l.Register(1, 1, HandlerFunc(func(*message.Message) {})))
	l.Close()

	m, err := codec.CreateEmpty(message.MsgTypeInitDone)
	require.Nil(t, err)
	err = l.Send(0, 1, m)
	assert.Equal(t, ErrClosed, errors.Cause(err))
	assert.Equal(t, uint64(0), l.Sent())
}

// A handler still draining its queue while Close runs must see ErrClosed on
// forwards, never a missing endpoint.
func TestLoopbackForwardDuringClose(t *testing.T) {
	const n = 10
	conf := config.NewTestConfig()
	conf.ThreadCnt = 3
	l, codec, st := newTestLoopback(t, conf)
	defer st.Close()

	gate := make(chan struct{})
	var errs []error
	require.Nil(t, l.Register(1, 1, HandlerFunc(func(m *message.Message) {
		<-gate
		errs = append(errs, l.Send(1, 2, m))
	})))
	require.Nil(t, l.Register(2, 2, HandlerFunc(func(*message.Message) {})))

	for i := 0; i < n; i++ {
		m, err := codec.CreateFromQuery(&txn.Query{TxnID: uint64(i), BatchID: 1}, message.MsgTypeRemoteDone)
		require.Nil(t, err)
		require.Nil(t, l.Send(0, 1, m))
		codec.Release(m)
	}

	closed := make(chan struct{})
	go func() {
		l.Close()
		close(closed)
	}()
	for !l.isClosed() {
		runtime.Gosched()
	}
	close(gate)
	<-closed

	require.Len(t, errs, n)
	for _, err := range errs {
		assert.Equal(t, ErrClosed, errors.Cause(err))
	}
	assert.Equal(t, uint64(n), l.Received())
	assert.Equal(t, uint64(n), l.Sent())
}
