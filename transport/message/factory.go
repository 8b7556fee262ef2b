package message

import (
	"encoding/binary"

	"github.com/pingcap-incubator/txnbed/log"
	"github.com/pingcap-incubator/txnbed/txn"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// newBody is the dispatch table from tag to variant. Query and ClientQuery
// resolve to their YCSB forms when the deployment runs YCSB.
func (c *Codec) newBody(tp MsgType) (Body, error) {
	switch tp {
	case MsgTypeInitDone:
		return &InitDone{}, nil
	case MsgTypeRemoteFinish:
		return &Finish{}, nil
	case MsgTypeRemoteQueryResponse:
		return &QueryResponse{}, nil
	case MsgTypeRemoteAck, MsgTypeRemoteAckPrepare, MsgTypeRemoteAckFinish:
		return &Ack{}, nil
	case MsgTypeRemoteInit:
		return &Init{}, nil
	case MsgTypeRemotePrepare:
		return &Prepare{}, nil
	case MsgTypeRemoteForward:
		return &Forward{}, nil
	case MsgTypeRemoteDone:
		return &Done{}, nil
	case MsgTypeClientResponse:
		return &ClientResponse{}, nil
	case MsgTypeClientQuery:
		if c.caps.YCSBRequests {
			return &YCSBClientQuery{}, nil
		}
		return &ClientQuery{}, nil
	case MsgTypeRemoteQuery, MsgTypeRemoteQueryContinue:
		if c.caps.YCSBRequests {
			return &YCSBQuery{}, nil
		}
		return &Query{}, nil
	default:
		return nil, errors.Annotatef(ErrUnknownType, "tag %d", uint32(tp))
	}
}

// PeekType reads the tag at the start of buf without decoding the rest.
func PeekType(buf []byte) (MsgType, error) {
	if len(buf) < u32Size {
		return 0, errors.Annotatef(ErrShortBuffer, "tag needs %d bytes, have %d", u32Size, len(buf))
	}
	return MsgType(binary.LittleEndian.Uint32(buf)), nil
}

// CreateEmpty allocates an unpopulated message of type tp.
func (c *Codec) CreateEmpty(tp MsgType) (*Message, error) {
	body, err := c.newBody(tp)
	if err != nil {
		return nil, err
	}
	return &Message{Type: tp, Body: body}, nil
}

// CreateFromQuery builds a message of type tp from q.
func (c *Codec) CreateFromQuery(q *txn.Query, tp MsgType) (*Message, error) {
	m, err := c.CreateEmpty(tp)
	if err != nil {
		return nil, err
	}
	c.CopyFromQuery(m, q)
	return m, nil
}

// CreateFromBuffer decodes the message at the start of buf. A corrupt
// buffer yields an error and no message.
func (c *Codec) CreateFromBuffer(buf []byte) (*Message, error) {
	tp, err := PeekType(buf)
	if err != nil {
		return nil, err
	}
	m, err := c.CreateEmpty(tp)
	if err != nil {
		return nil, err
	}
	if _, err := c.CopyFromBuf(m, buf); err != nil {
		c.Release(m)
		return nil, err
	}
	return m, nil
}

// MustCreateFromBuffer is CreateFromBuffer for the receive path, where a
// corrupt buffer means both ends disagree on the protocol and continuing
// would spread garbage into transaction state.
func (c *Codec) MustCreateFromBuffer(buf []byte) *Message {
	m, err := c.CreateFromBuffer(buf)
	if err != nil {
		log.Fatal("corrupt message", zap.Int("len", len(buf)), zap.Error(err))
	}
	return m
}

// Release hands the message's arrays back to the allocator. Releasing a
// message twice panics.
func (c *Codec) Release(m *Message) {
	if m.released {
		panic(errors.Errorf("message: %s of txn %d released twice", m.Type, m.TxnID))
	}
	m.released = true
	c.freeArrays(m)
}

func (c *Codec) freeArrays(m *Message) {
	switch b := m.Body.(type) {
	case *ClientQuery:
		c.alloc.Partitions.Put(m.home, b.Partitions)
		b.Partitions = nil
	case *YCSBClientQuery:
		c.alloc.Partitions.Put(m.home, b.Partitions)
		c.alloc.Requests.Put(m.home, b.Requests)
		b.Partitions, b.Requests = nil, nil
	case *YCSBQuery:
		c.alloc.Requests.Put(m.home, b.Requests)
		b.Requests = nil
	}
}
