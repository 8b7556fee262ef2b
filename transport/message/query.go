package message

import (
	"github.com/pingcap-incubator/txnbed/txn"
	"github.com/pingcap/errors"
)

// CopyFromQuery fills m's header and body from q. Fields the deployment does
// not carry are left zero.
func (c *Codec) CopyFromQuery(m *Message, q *txn.Query) {
	c.freeArrays(m)
	m.TxnID = q.TxnID
	m.home = q.PartitionID
	switch b := m.Body.(type) {
	case *InitDone:
	case *Finish:
		*b = Finish{PartitionID: q.PartitionID, RC: q.RC, BatchID: q.BatchID, ReadOnly: q.ReadOnly}
	case *QueryResponse:
		*b = QueryResponse{RC: q.RC, PartitionID: q.PartitionID}
	case *Ack:
		*b = Ack{RC: q.RC}
		if c.caps.BatchIDs {
			b.BatchID = q.BatchID
		}
	case *Init:
		*b = Init{Timestamp: q.Timestamp, PartitionID: q.PartitionID}
	case *Prepare:
		*b = Prepare{PartitionID: q.PartitionID, RC: q.RC}
	case *Forward:
		*b = Forward{BatchID: q.BatchID}
		if c.caps.ForwardOrderID {
			b.OrderID = q.OrderID
		}
	case *Done:
		*b = Done{BatchID: q.BatchID}
	case *ClientResponse:
		*b = ClientResponse{RC: q.RC, ClientStartTS: q.ClientStartTS}
	case *ClientQuery:
		c.clientQueryFromQuery(b, q)
	case *YCSBClientQuery:
		c.clientQueryFromQuery(&b.ClientQuery, q)
		b.Requests = c.copyRequests(m.home, q.Requests)
	case *Query:
		c.queryFromQuery(b, q)
	case *YCSBQuery:
		c.queryFromQuery(&b.Query, q)
		b.Requests = c.copyRequests(m.home, q.Requests)
	default:
		panic(errors.Errorf("message: unknown body %T", m.Body))
	}
}

func (c *Codec) clientQueryFromQuery(b *ClientQuery, q *txn.Query) {
	*b = ClientQuery{PartitionID: q.PartitionID, Timestamp: q.Timestamp}
	if c.caps.BatchIDs {
		b.BatchID = q.BatchID
	}
	b.Partitions = c.alloc.Partitions.Get(q.PartitionID, len(q.Partitions))
	copy(b.Partitions, q.Partitions)
}

func (c *Codec) queryFromQuery(b *Query, q *txn.Query) {
	*b = Query{PartitionID: q.PartitionID}
	if c.caps.QueryTimestamp {
		b.Timestamp = q.Timestamp
	}
	if c.caps.QueryThreadID {
		b.ThreadID = q.ThreadID
	} else if c.caps.QueryStartTS {
		b.StartTimestamp = q.StartTimestamp
	}
	if c.caps.QueryMaxAccess {
		b.MaxAccess = q.MaxAccess
	}
}

func (c *Codec) copyRequests(home uint64, reqs []txn.Request) []txn.Request {
	out := c.alloc.Requests.Get(home, len(reqs))
	copy(out, reqs)
	return out
}

// CopyToQuery writes m's header and body into q. Arrays are copied into q's
// own storage so q stays valid after m is released.
func (c *Codec) CopyToQuery(m *Message, q *txn.Query) {
	q.TxnID = m.TxnID
	switch b := m.Body.(type) {
	case *InitDone:
	case *Finish:
		q.PartitionID = b.PartitionID
		q.RC = b.RC
		q.BatchID = b.BatchID
		q.ReadOnly = b.ReadOnly
	case *QueryResponse:
		q.RC = b.RC
		q.PartitionID = b.PartitionID
	case *Ack:
		q.RC = b.RC
		if c.caps.BatchIDs {
			q.BatchID = b.BatchID
		}
	case *Init:
		q.Timestamp = b.Timestamp
		q.PartitionID = b.PartitionID
	case *Prepare:
		q.PartitionID = b.PartitionID
		q.RC = b.RC
	case *Forward:
		q.BatchID = b.BatchID
		if c.caps.ForwardOrderID {
			q.OrderID = b.OrderID
		}
	case *Done:
		q.BatchID = b.BatchID
	case *ClientResponse:
		q.RC = b.RC
		q.ClientStartTS = b.ClientStartTS
	case *ClientQuery:
		c.clientQueryToQuery(b, q)
	case *YCSBClientQuery:
		c.clientQueryToQuery(&b.ClientQuery, q)
		q.Requests = append(q.Requests[:0], b.Requests...)
	case *Query:
		c.queryToQuery(b, q)
	case *YCSBQuery:
		c.queryToQuery(&b.Query, q)
		q.Requests = append(q.Requests[:0], b.Requests...)
	default:
		panic(errors.Errorf("message: unknown body %T", m.Body))
	}
}

func (c *Codec) clientQueryToQuery(b *ClientQuery, q *txn.Query) {
	q.PartitionID = b.PartitionID
	q.Timestamp = b.Timestamp
	if c.caps.BatchIDs {
		q.BatchID = b.BatchID
	}
	q.Partitions = append(q.Partitions[:0], b.Partitions...)
}

func (c *Codec) queryToQuery(b *Query, q *txn.Query) {
	q.PartitionID = b.PartitionID
	if c.caps.QueryTimestamp {
		q.Timestamp = b.Timestamp
	}
	if c.caps.QueryThreadID {
		q.ThreadID = b.ThreadID
	} else if c.caps.QueryStartTS {
		q.StartTimestamp = b.StartTimestamp
	}
	if c.caps.QueryMaxAccess {
		q.MaxAccess = b.MaxAccess
	}
}
