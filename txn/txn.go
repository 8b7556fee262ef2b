// Package txn holds the transaction vocabulary shared by the message layer
// and its collaborators: result codes, YCSB requests and the query shape
// messages are copied to and from.
package txn

import "fmt"

// RC is the verdict of a transaction or one of its sub-operations. It is
// plain data carried in messages.
type RC uint32

const (
	RCOK RC = iota
	Commit
	Abort
	Wait
	WaitRem
	Error
	Finish
	None
)

var rcNames = [...]string{"RCOK", "Commit", "Abort", "Wait", "WaitRem", "Error", "Finish", "None"}

func (rc RC) String() string {
	if int(rc) < len(rcNames) {
		return rcNames[rc]
	}
	return fmt.Sprintf("RC(%d)", uint32(rc))
}

// AccessType is the kind of a single YCSB request.
type AccessType uint32

const (
	RD AccessType = iota
	WR
	SCAN
)

func (a AccessType) String() string {
	switch a {
	case RD:
		return "RD"
	case WR:
		return "WR"
	case SCAN:
		return "SCAN"
	}
	return fmt.Sprintf("AccessType(%d)", uint32(a))
}

// Request is one key access of a YCSB transaction.
type Request struct {
	Type  AccessType
	Key   uint64
	Value byte
}

// Query is the in-memory transaction state that messages are built from on
// the send path and copied into on the receive path.
type Query struct {
	TxnID          uint64
	PartitionID    uint64
	Timestamp      uint64
	StartTimestamp uint64
	ThreadID       uint64
	BatchID        uint64
	OrderID        uint64
	MaxAccess      uint64
	ClientStartTS  uint64
	RC             RC
	ReadOnly       bool
	Partitions     []uint64
	Requests       []Request
}

// Reset clears q for reuse, keeping the backing arrays.
func (q *Query) Reset() {
	parts, reqs := q.Partitions[:0], q.Requests[:0]
	*q = Query{Partitions: parts, Requests: reqs}
}

// IDSpace interleaves transaction ids so that every (node, thread) pair owns
// a disjoint arithmetic sequence.
type IDSpace struct {
	NodeCnt   uint64
	ThreadCnt uint64
}

// Make returns the seq-th id issued by thread on node.
func (s IDSpace) Make(seq, node, thread uint64) uint64 {
	return seq*s.NodeCnt*s.ThreadCnt + thread*s.NodeCnt + node
}

// Thread returns the worker thread that issued txnID.
func (s IDSpace) Thread(txnID uint64) uint64 {
	return (txnID % (s.NodeCnt * s.ThreadCnt)) / s.NodeCnt
}

// Node returns the node that issued txnID.
func (s IDSpace) Node(txnID uint64) uint64 {
	return txnID % s.NodeCnt
}
