package transport

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap-incubator/txnbed/log"
	"github.com/pingcap-incubator/txnbed/stats"
	"github.com/pingcap-incubator/txnbed/transport/message"
	"github.com/pingcap-incubator/txnbed/util/worker"
	"github.com/pingcap/errors"
	uatomic "go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrClosed is returned by Send once the loopback is closing.
var ErrClosed = errors.New("transport: loopback closed")

// Handler consumes a decoded message. The message is released when Handle
// returns, so anything needed later must be copied out, e.g. with
// Codec.CopyToQuery.
type Handler interface {
	Handle(m *message.Message)
}

type HandlerFunc func(m *message.Message)

func (f HandlerFunc) Handle(m *message.Message) { f(m) }

// Loopback connects in-process endpoints. Each registered endpoint gets a
// worker that reads frames, decodes them and dispatches to its handler.
type Loopback struct {
	codec    *message.Codec
	stats    *stats.Stats
	maxFrame uint64
	queue    int

	mu        sync.RWMutex
	endpoints map[uint64]*endpoint
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once

	sent     uatomic.Uint64
	received uatomic.Uint64
}

type endpoint struct {
	id      uint64
	tid     uint64
	worker  *worker.Worker
	handler Handler
	l       *Loopback
}

func NewLoopback(conf *config.Config, codec *message.Codec, st *stats.Stats) (*Loopback, error) {
	max, err := conf.FrameLimit()
	if err != nil {
		return nil, err
	}
	return &Loopback{
		codec:     codec,
		stats:     st,
		maxFrame:  max,
		queue:     conf.MsgQueueSize,
		endpoints: make(map[uint64]*endpoint),
		closed:    make(chan struct{}),
	}, nil
}

// Register attaches h as endpoint id. Statistics of the receive side are
// charged to thread tid, which must not be written by anyone else.
func (l *Loopback) Register(id, tid uint64, h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.endpoints[id]; ok {
		return errors.Errorf("transport: endpoint %d already registered", id)
	}
	ep := &endpoint{
		id:      id,
		tid:     tid,
		worker:  worker.NewWorker(fmt.Sprintf("endpoint-%d", id), l.queue, &l.wg),
		handler: h,
		l:       l,
	}
	ep.worker.Start(ep)
	l.endpoints[id] = ep
	return nil
}

// Send encodes m, frames it and queues it for endpoint to. Statistics are
// charged to the sending thread tid. The caller keeps ownership of m.
// Once Close has started every Send fails with ErrClosed.
func (l *Loopback) Send(tid, to uint64, m *message.Message) error {
	if l.isClosed() {
		return errors.Trace(ErrClosed)
	}
	l.mu.RLock()
	ep, ok := l.endpoints[to]
	l.mu.RUnlock()
	if !ok {
		if l.isClosed() {
			return errors.Trace(ErrClosed)
		}
		return errors.Errorf("transport: no endpoint %d", to)
	}

	start := time.Now()
	size := l.codec.Size(m)
	if size > l.maxFrame {
		return errors.Annotatef(ErrFrameTooLarge, "%s of %d bytes, limit %d", m.Type, size, l.maxFrame)
	}
	var frame bytes.Buffer
	frame.Grow(int(size) + frameHeaderSize)
	if err := WriteFrame(&frame, l.codec.Marshal(m)); err != nil {
		return err
	}
	l.stats.Inc(tid, stats.MsgEncodeTime, float64(time.Since(start).Nanoseconds()))
	l.stats.Inc(tid, stats.MsgSentCnt, 1)
	l.stats.Inc(tid, stats.MsgBytesSent, float64(size))
	l.stats.IncGlobal(stats.GlobMsgCnt, 1)
	l.stats.IncGlobal(stats.GlobMsgBytes, size)

	select {
	case ep.worker.Sender() <- frame.Bytes():
	case <-l.closed:
		return errors.Trace(ErrClosed)
	}
	l.sent.Inc()
	return nil
}

// Handle runs on the endpoint's worker.
func (ep *endpoint) Handle(t worker.Task) {
	l := ep.l
	raw := t.([]byte)
	payload, err := ReadFrame(bytes.NewReader(raw), l.maxFrame)
	if err != nil {
		log.Fatal("corrupt frame", zap.Uint64("endpoint", ep.id), zap.Error(err))
	}
	start := time.Now()
	m := l.codec.MustCreateFromBuffer(payload)
	elapsed := float64(time.Since(start).Nanoseconds())
	l.stats.Inc(ep.tid, stats.MsgDecodeTime, elapsed)
	l.stats.IncArr(ep.tid, stats.MsgDecodeLatency, elapsed)
	l.stats.IncArr(ep.tid, stats.MsgSize, float64(len(payload)))
	l.stats.Inc(ep.tid, stats.MsgRcvCnt, 1)
	l.stats.Inc(ep.tid, stats.MsgBytesRcv, float64(len(payload)))

	ep.handler.Handle(m)
	l.codec.Release(m)
	l.stats.Inc(ep.tid, stats.MsgReleaseCnt, 1)
	l.received.Inc()
}

func (l *Loopback) isClosed() bool {
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

func (l *Loopback) Sent() uint64 {
	return l.sent.Load()
}

func (l *Loopback) Received() uint64 {
	return l.received.Load()
}

// Close stops every endpoint after its queued messages are handled. Sends
// racing with Close fail with ErrClosed.
func (l *Loopback) Close() {
	l.closeOnce.Do(func() { close(l.closed) })
	l.mu.Lock()
	eps := l.endpoints
	l.endpoints = make(map[uint64]*endpoint)
	l.mu.Unlock()
	for _, ep := range eps {
		ep.worker.Stop()
	}
	l.wg.Wait()
	log.Debug("loopback closed", zap.Uint64("sent", l.Sent()), zap.Uint64("received", l.Received()))
}
