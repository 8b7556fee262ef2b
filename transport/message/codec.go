package message

import (
	"reflect"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap-incubator/txnbed/txn"
	"github.com/pingcap-incubator/txnbed/util/mem"
	"github.com/pingcap/errors"
)

// Allocator backs the variable-length arrays of messages with
// partition-local pools.
type Allocator struct {
	Partitions *mem.Pool[uint64]
	Requests   *mem.Pool[txn.Request]
}

func NewAllocator(parts int) *Allocator {
	return &Allocator{
		Partitions: mem.NewPool[uint64](parts),
		Requests:   mem.NewPool[txn.Request](parts),
	}
}

// Codec sizes, encodes and decodes messages for one deployment
// configuration. It is safe for concurrent use.
type Codec struct {
	caps  Capabilities
	alloc *Allocator
}

func NewCodec(conf *config.Config) *Codec {
	return NewCodecWithAllocator(conf, NewAllocator(int(conf.PartCnt)))
}

func NewCodecWithAllocator(conf *config.Config, alloc *Allocator) *Codec {
	return &Codec{caps: CapabilitiesFromConfig(conf), alloc: alloc}
}

// NewCodecWithCapabilities builds a codec from an explicit capability table.
func NewCodecWithCapabilities(caps Capabilities, alloc *Allocator) *Codec {
	if caps.QueryThreadID && caps.QueryStartTS {
		panic(errors.New("message: thread id and start timestamp are mutually exclusive"))
	}
	return &Codec{caps: caps, alloc: alloc}
}

func (c *Codec) Capabilities() Capabilities {
	return c.caps
}

func (c *Codec) Allocator() *Allocator {
	return c.alloc
}

func opt(present bool, n uint64) uint64 {
	if present {
		return n
	}
	return 0
}

// Size returns the exact encoded length of m.
func (c *Codec) Size(m *Message) uint64 {
	return HeaderSize + c.bodySize(m.Body)
}

func (c *Codec) clientQuerySize(b *ClientQuery) uint64 {
	return 2*u64Size + opt(c.caps.BatchIDs, u64Size) + u64Size + uint64(len(b.Partitions))*u64Size
}

func (c *Codec) querySize(*Query) uint64 {
	return u64Size +
		opt(c.caps.QueryTimestamp, u64Size) +
		opt(c.caps.QueryThreadID || c.caps.QueryStartTS, u64Size) +
		opt(c.caps.QueryMaxAccess, u64Size)
}

func requestsSize(reqs []txn.Request) uint64 {
	return u64Size + uint64(len(reqs))*requestSize
}

func (c *Codec) bodySize(body Body) uint64 {
	switch b := body.(type) {
	case *InitDone:
		return 0
	case *Finish:
		return u64Size + u32Size + u64Size + u8Size
	case *QueryResponse:
		return u32Size + u64Size
	case *Ack:
		return u32Size + opt(c.caps.BatchIDs, u64Size)
	case *Init:
		return 2 * u64Size
	case *Prepare:
		return u64Size + u32Size
	case *Forward:
		return u64Size + opt(c.caps.ForwardOrderID, u64Size)
	case *Done:
		return u64Size
	case *ClientResponse:
		return u32Size + u64Size
	case *ClientQuery:
		return c.clientQuerySize(b)
	case *YCSBClientQuery:
		return c.clientQuerySize(&b.ClientQuery) + requestsSize(b.Requests)
	case *Query:
		return c.querySize(b)
	case *YCSBQuery:
		return c.querySize(&b.Query) + requestsSize(b.Requests)
	default:
		panic(errors.Errorf("message: unknown body %T", body))
	}
}

// CopyToBuf encodes m at the start of buf and returns the bytes written.
// It panics if the written length disagrees with Size.
func (c *Codec) CopyToBuf(m *Message, buf []byte) (int, error) {
	size := c.Size(m)
	if uint64(len(buf)) < size {
		return 0, errors.Annotatef(ErrShortBuffer, "encode %s needs %d bytes, have %d", m.Type, size, len(buf))
	}
	e := &encoder{buf: buf}
	e.u32(uint32(m.Type))
	e.u64(m.TxnID)
	c.encodeBody(e, m.Body)
	if uint64(e.off) != size {
		panic(errors.Errorf("message: %s wrote %d bytes but sized %d", m.Type, e.off, size))
	}
	return e.off, nil
}

// Marshal encodes m into a new buffer of exactly Size(m) bytes.
func (c *Codec) Marshal(m *Message) []byte {
	buf := make([]byte, c.Size(m))
	if _, err := c.CopyToBuf(m, buf); err != nil {
		panic(err)
	}
	return buf
}

func (c *Codec) encodeClientQuery(e *encoder, b *ClientQuery) {
	e.u64(b.PartitionID)
	e.u64(b.Timestamp)
	if c.caps.BatchIDs {
		e.u64(b.BatchID)
	}
	e.u64s(b.Partitions)
}

func (c *Codec) encodeQuery(e *encoder, b *Query) {
	e.u64(b.PartitionID)
	if c.caps.QueryTimestamp {
		e.u64(b.Timestamp)
	}
	if c.caps.QueryThreadID {
		e.u64(b.ThreadID)
	} else if c.caps.QueryStartTS {
		e.u64(b.StartTimestamp)
	}
	if c.caps.QueryMaxAccess {
		e.u64(b.MaxAccess)
	}
}

func (c *Codec) encodeBody(e *encoder, body Body) {
	switch b := body.(type) {
	case *InitDone:
	case *Finish:
		e.u64(b.PartitionID)
		e.rc(b.RC)
		e.u64(b.BatchID)
		e.bool(b.ReadOnly)
	case *QueryResponse:
		e.rc(b.RC)
		e.u64(b.PartitionID)
	case *Ack:
		e.rc(b.RC)
		if c.caps.BatchIDs {
			e.u64(b.BatchID)
		}
	case *Init:
		e.u64(b.Timestamp)
		e.u64(b.PartitionID)
	case *Prepare:
		e.u64(b.PartitionID)
		e.rc(b.RC)
	case *Forward:
		e.u64(b.BatchID)
		if c.caps.ForwardOrderID {
			e.u64(b.OrderID)
		}
	case *Done:
		e.u64(b.BatchID)
	case *ClientResponse:
		e.rc(b.RC)
		e.u64(b.ClientStartTS)
	case *ClientQuery:
		c.encodeClientQuery(e, b)
	case *YCSBClientQuery:
		c.encodeClientQuery(e, &b.ClientQuery)
		e.requests(b.Requests)
	case *Query:
		c.encodeQuery(e, b)
	case *YCSBQuery:
		c.encodeQuery(e, &b.Query)
		e.requests(b.Requests)
	default:
		panic(errors.Errorf("message: unknown body %T", body))
	}
}

// CopyFromBuf decodes buf into m, whose body must be the variant the
// encoded tag maps to. It returns the bytes consumed.
func (c *Codec) CopyFromBuf(m *Message, buf []byte) (int, error) {
	d := &decoder{buf: buf}
	tp := MsgType(d.u32())
	txnID := d.u64()
	if d.err != nil {
		return 0, d.err
	}
	want, err := c.newBody(tp)
	if err != nil {
		return 0, err
	}
	if reflect.TypeOf(want) != reflect.TypeOf(m.Body) {
		return 0, errors.Errorf("message: %s cannot be decoded into %T", tp, m.Body)
	}
	c.freeArrays(m)
	m.Type = tp
	m.TxnID = txnID
	c.decodeBody(d, m)
	if d.err != nil {
		return 0, errors.Trace(d.err)
	}
	if size := c.Size(m); uint64(d.off) != size {
		panic(errors.Errorf("message: %s read %d bytes but sized %d", tp, d.off, size))
	}
	return d.off, nil
}

func (c *Codec) decodeClientQuery(d *decoder, m *Message, b *ClientQuery) {
	b.PartitionID = d.u64()
	b.Timestamp = d.u64()
	b.BatchID = 0
	if c.caps.BatchIDs {
		b.BatchID = d.u64()
	}
	m.home = b.PartitionID
	n := d.count(u64Size)
	b.Partitions = c.alloc.Partitions.Get(m.home, n)
	for i := range b.Partitions {
		b.Partitions[i] = d.u64()
	}
}

func (c *Codec) decodeQuery(d *decoder, m *Message, b *Query) {
	*b = Query{PartitionID: d.u64()}
	m.home = b.PartitionID
	if c.caps.QueryTimestamp {
		b.Timestamp = d.u64()
	}
	if c.caps.QueryThreadID {
		b.ThreadID = d.u64()
	} else if c.caps.QueryStartTS {
		b.StartTimestamp = d.u64()
	}
	if c.caps.QueryMaxAccess {
		b.MaxAccess = d.u64()
	}
}

func (c *Codec) decodeRequests(d *decoder, m *Message) []txn.Request {
	n := d.count(requestSize)
	reqs := c.alloc.Requests.Get(m.home, n)
	for i := range reqs {
		reqs[i].Type = txn.AccessType(d.u32())
		reqs[i].Key = d.u64()
		reqs[i].Value = d.u8()
	}
	return reqs
}

func (c *Codec) decodeBody(d *decoder, m *Message) {
	switch b := m.Body.(type) {
	case *InitDone:
	case *Finish:
		b.PartitionID = d.u64()
		b.RC = d.rc()
		b.BatchID = d.u64()
		b.ReadOnly = d.bool()
	case *QueryResponse:
		b.RC = d.rc()
		b.PartitionID = d.u64()
	case *Ack:
		b.RC = d.rc()
		b.BatchID = 0
		if c.caps.BatchIDs {
			b.BatchID = d.u64()
		}
	case *Init:
		b.Timestamp = d.u64()
		b.PartitionID = d.u64()
	case *Prepare:
		b.PartitionID = d.u64()
		b.RC = d.rc()
	case *Forward:
		b.BatchID = d.u64()
		b.OrderID = 0
		if c.caps.ForwardOrderID {
			b.OrderID = d.u64()
		}
	case *Done:
		b.BatchID = d.u64()
	case *ClientResponse:
		b.RC = d.rc()
		b.ClientStartTS = d.u64()
	case *ClientQuery:
		c.decodeClientQuery(d, m, b)
	case *YCSBClientQuery:
		c.decodeClientQuery(d, m, &b.ClientQuery)
		b.Requests = c.decodeRequests(d, m)
	case *Query:
		c.decodeQuery(d, m, b)
	case *YCSBQuery:
		c.decodeQuery(d, m, &b.Query)
		b.Requests = c.decodeRequests(d, m)
	default:
		panic(errors.Errorf("message: unknown body %T", m.Body))
	}
}
