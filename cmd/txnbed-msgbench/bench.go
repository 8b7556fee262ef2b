package main

import (
	"context"
	"time"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap-incubator/txnbed/log"
	"github.com/pingcap-incubator/txnbed/stats"
	"github.com/pingcap-incubator/txnbed/storage"
	"github.com/pingcap-incubator/txnbed/transport"
	"github.com/pingcap-incubator/txnbed/transport/message"
	"github.com/pingcap-incubator/txnbed/txn"
	"github.com/pingcap-incubator/txnbed/util/keys"
	"github.com/pingcap-incubator/txnbed/util/list"
	"github.com/pingcap-incubator/txnbed/util/myrand"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const indexBuckets = 1 << 12

// benchOptions are the knobs that are not part of a deployment config.
type benchOptions struct {
	TxnPerThread int
	Window       int
	Rate         int
}

// bench drives ThreadCnt client threads against NodeCnt server endpoints.
// Stats thread ids are laid out as [clients | servers | client replies].
type bench struct {
	conf    *config.Config
	opts    benchOptions
	codec   *message.Codec
	stats   *stats.Stats
	lb      *transport.Loopback
	ids     txn.IDSpace
	zipf    *myrand.Zipf
	limiter *rate.Limiter

	replies []chan txn.Query

	// closed once the clients stop consuming replies
	done chan struct{}
}

func newBench(conf *config.Config, opts benchOptions) (*bench, error) {
	if opts.Window <= 0 {
		opts.Window = 1
	}
	statsConf := *conf
	statsConf.ThreadCnt = 2*conf.ThreadCnt + conf.NodeCnt

	b := &bench{
		conf:    conf,
		opts:    opts,
		codec:   message.NewCodec(conf),
		stats:   stats.New(&statsConf),
		ids:     txn.IDSpace{NodeCnt: conf.NodeCnt, ThreadCnt: conf.ThreadCnt},
		zipf:    myrand.NewZipf(conf.SynthTableSize, conf.ZipfTheta),
		limiter: rate.NewLimiter(rate.Inf, 0),
		replies: make([]chan txn.Query, conf.ThreadCnt),
		done:    make(chan struct{}),
	}
	if opts.Rate > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(opts.Rate), opts.Rate)
	}
	lb, err := transport.NewLoopback(conf, b.codec, b.stats)
	if err != nil {
		b.stats.Close()
		return nil, err
	}
	b.lb = lb

	for n := uint64(0); n < conf.NodeCnt; n++ {
		srv := &server{b: b, tid: conf.ThreadCnt + n, index: storage.NewIndex(indexBuckets)}
		if err := lb.Register(n, srv.tid, srv); err != nil {
			return nil, err
		}
	}
	for t := uint64(0); t < conf.ThreadCnt; t++ {
		ch := make(chan txn.Query, opts.Window)
		b.replies[t] = ch
		if err := lb.Register(b.clientEndpoint(t), b.clientEndpoint(t), b.replyHandler(ch)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// clientEndpoint is both the endpoint id and the stats thread of the reply
// side of client thread t.
func (b *bench) clientEndpoint(t uint64) uint64 {
	return b.conf.ThreadCnt + b.conf.NodeCnt + t
}

func (b *bench) replyHandler(ch chan<- txn.Query) transport.Handler {
	return transport.HandlerFunc(func(m *message.Message) {
		var q txn.Query
		b.codec.CopyToQuery(m, &q)
		select {
		case ch <- q:
		case <-b.done:
		}
	})
}

// run blocks until every client thread has finished or ctx is cancelled,
// then shuts the transport down.
func (b *bench) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for t := uint64(0); t < b.conf.ThreadCnt; t++ {
		c := newClient(b, t)
		g.Go(func() error {
			return c.run(ctx)
		})
	}
	err := g.Wait()
	close(b.done)
	b.lb.Close()
	return err
}

func (b *bench) close() {
	b.stats.Close()
}

// server answers client queries for one node. It runs on the node's
// transport worker, so it is the only writer of its stats slot and index.
type server struct {
	b     *bench
	tid   uint64
	index *storage.Index
	q     txn.Query
}

func (s *server) Handle(m *message.Message) {
	if m.Type != message.MsgTypeClientQuery {
		log.Warn("unexpected message", zap.Stringer("msg", m))
		return
	}
	start := time.Now()
	s.q.Reset()
	s.b.codec.CopyToQuery(m, &s.q)
	s.execute(&s.q)
	s.b.stats.Inc(s.tid, stats.ProcessTime, float64(time.Since(start).Nanoseconds()))

	from := s.b.ids.Thread(s.q.TxnID)
	resp := txn.Query{TxnID: s.q.TxnID, RC: s.q.RC, ClientStartTS: s.q.Timestamp}
	rm, err := s.b.codec.CreateFromQuery(&resp, message.MsgTypeClientResponse)
	if err != nil {
		log.Fatal("build response", zap.Error(err))
	}
	defer s.b.codec.Release(rm)
	err = s.b.lb.Send(s.tid, s.b.clientEndpoint(from), rm)
	if err != nil && errors.Cause(err) != transport.ErrClosed {
		log.Fatal("send response", zap.Uint64("txn", resp.TxnID), zap.Error(err))
	}
}

// execute applies the requests to the node's index. A read of a missing row
// aborts the transaction.
func (s *server) execute(q *txn.Query) {
	q.RC = txn.Commit
	for _, r := range q.Requests {
		switch r.Type {
		case txn.WR:
			s.index.Insert(r.Key, storage.NewItemID(storage.DTRow, storage.Location(r.Key+1)))
		case txn.RD, txn.SCAN:
			if s.index.Lookup(r.Key) == nil {
				q.RC = txn.Abort
			}
		}
	}
}

type inflight struct {
	txnID uint64
	start time.Time
}

// client is one sending thread. Outstanding transactions live in a list
// ordered by issue time, their slots recycled through a free stack.
type client struct {
	b     *bench
	tid   uint64
	rand  *myrand.Rand
	seq   uint64
	query txn.Query

	arena   *list.Arena
	slots   []inflight
	free    list.Stack
	pending list.List
}

func newClient(b *bench, tid uint64) *client {
	c := &client{
		b:       b,
		tid:     tid,
		rand:    myrand.New(tid + 1),
		arena:   list.NewArena(b.opts.Window),
		slots:   make([]inflight, b.opts.Window),
		free:    list.NewStack(),
		pending: list.NewList(),
	}
	for i := 0; i < b.opts.Window; i++ {
		c.arena.Push(&c.free, c.arena.Add())
	}
	return c
}

func (c *client) run(ctx context.Context) error {
	sent, done := 0, 0
	for done < c.b.opts.TxnPerThread {
		if sent < c.b.opts.TxnPerThread && !c.free.Empty() {
			if err := c.b.limiter.Wait(ctx); err != nil {
				return errors.Trace(err)
			}
			if err := c.send(); err != nil {
				return err
			}
			sent++
			continue
		}
		select {
		case q := <-c.b.replies[c.tid]:
			c.complete(&q)
			done++
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		}
	}
	return nil
}

// genQuery builds a single-home transaction: every key lives in one
// partition, so the node that receives it owns all the rows it touches.
func (c *client) genQuery() *txn.Query {
	q := &c.query
	q.Reset()
	conf := c.b.conf
	q.TxnID = c.b.ids.Make(c.seq, conf.NodeID, c.tid)
	c.seq++
	q.ThreadID = c.tid
	q.Timestamp = uint64(time.Now().UnixNano())
	q.ClientStartTS = q.Timestamp
	q.ReadOnly = true
	q.PartitionID = c.rand.Intn(conf.PartCnt)
	q.Partitions = append(q.Partitions, q.PartitionID)
	for i := uint64(0); i < conf.ReqPerQuery; i++ {
		key := homeKey(c.b.zipf.Next(c.rand), q.PartitionID, conf.PartCnt, conf.SynthTableSize)
		r := txn.Request{Type: txn.RD, Key: key}
		if c.rand.Float64() < conf.TupWriteRate {
			r.Type = txn.WR
			r.Value = byte(c.rand.Next())
			q.ReadOnly = false
		}
		q.Requests = append(q.Requests, r)
	}
	return q
}

// homeKey moves key to the nearest key of partition part below tableSize,
// keeping the skew of the key's neighbourhood.
func homeKey(key, part, partCnt, tableSize uint64) uint64 {
	k := key - keys.KeyToPart(key, partCnt) + part
	if k >= tableSize {
		k -= partCnt
	}
	return k
}

// nodeOf is the node owning partition part.
func (b *bench) nodeOf(part uint64) uint64 {
	return part % b.conf.NodeCnt
}

func (c *client) send() error {
	q := c.genQuery()
	m, err := c.b.codec.CreateFromQuery(q, message.MsgTypeClientQuery)
	if err != nil {
		return err
	}
	defer c.b.codec.Release(m)

	slot := c.arena.Pop(&c.free)
	c.slots[slot] = inflight{txnID: q.TxnID, start: time.Now()}
	c.arena.PutTail(&c.pending, slot)

	return c.b.lb.Send(c.tid, c.b.nodeOf(q.PartitionID), m)
}

func (c *client) complete(q *txn.Query) {
	slot := list.Nil
	c.arena.Walk(&c.pending, func(i list.Index) bool {
		if c.slots[i].txnID == q.TxnID {
			slot = i
			return false
		}
		return true
	})
	if slot == list.Nil {
		log.Fatal("response for unknown transaction", zap.Uint64("txn", q.TxnID), zap.Uint64("thread", c.tid))
	}
	c.arena.RemoveHT(&c.pending, slot)
	c.arena.Push(&c.free, slot)

	st := c.b.stats
	lat := float64(time.Since(c.slots[slot].start).Nanoseconds())
	st.Inc(c.tid, stats.TxnCnt, 1)
	st.Inc(c.tid, stats.TxnRunTime, lat)
	st.IncArr(c.tid, stats.ClientLatency, lat)
	st.IncGlobal(stats.GlobTxnCnt, 1)
	if q.RC == txn.Commit {
		st.Inc(c.tid, stats.LocalTxnCommitCnt, 1)
	} else {
		st.Inc(c.tid, stats.TxnAbortCnt, 1)
		st.IncGlobal(stats.GlobAbortCnt, 1)
	}
}
