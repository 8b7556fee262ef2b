package message

import (
	"fmt"

	"github.com/pingcap-incubator/txnbed/txn"
)

// MsgType is the request type tag at the start of every encoded message.
type MsgType uint32

const (
	// a node finished initialization
	MsgTypeInitDone MsgType = 0
	// a client submits a transaction to a server
	MsgTypeClientQuery MsgType = 1
	// a coordinator asks a partition to run part of a transaction
	MsgTypeRemoteQuery MsgType = 2
	// a partition resumes a remote query that had to wait
	MsgTypeRemoteQueryContinue MsgType = 3
	// a coordinator tells participants the final outcome
	MsgTypeRemoteFinish MsgType = 4
	// a partition answers a remote query
	MsgTypeRemoteQueryResponse MsgType = 5
	// generic acknowledgement
	MsgTypeRemoteAck MsgType = 6
	// a participant votes on prepare
	MsgTypeRemoteAckPrepare MsgType = 7
	// a participant confirms finish
	MsgTypeRemoteAckFinish MsgType = 8
	// clock and partition setup sent at startup
	MsgTypeRemoteInit MsgType = 9
	// a coordinator starts two phase commit
	MsgTypeRemotePrepare MsgType = 10
	// a sequencer forwards a batched transaction
	MsgTypeRemoteForward MsgType = 11
	// a sequencer closes a batch
	MsgTypeRemoteDone MsgType = 12
	// a server answers the client
	MsgTypeClientResponse MsgType = 13
)

var msgTypeNames = map[MsgType]string{
	MsgTypeInitDone:            "INIT_DONE",
	MsgTypeClientQuery:         "CL_QRY",
	MsgTypeRemoteQuery:         "RQRY",
	MsgTypeRemoteQueryContinue: "RQRY_CONT",
	MsgTypeRemoteFinish:        "RFIN",
	MsgTypeRemoteQueryResponse: "RQRY_RSP",
	MsgTypeRemoteAck:           "RACK",
	MsgTypeRemoteAckPrepare:    "RACK_PREP",
	MsgTypeRemoteAckFinish:     "RACK_FIN",
	MsgTypeRemoteInit:          "RINIT",
	MsgTypeRemotePrepare:       "RPREPARE",
	MsgTypeRemoteForward:       "RFWD",
	MsgTypeRemoteDone:          "RDONE",
	MsgTypeClientResponse:      "CL_RSP",
}

func (t MsgType) String() string {
	if s, ok := msgTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MsgType(%d)", uint32(t))
}

// AllMsgTypes lists every tag the codec understands.
func AllMsgTypes() []MsgType {
	types := make([]MsgType, 0, len(msgTypeNames))
	for t := MsgTypeInitDone; t <= MsgTypeClientResponse; t++ {
		types = append(types, t)
	}
	return types
}

// Message is a header plus exactly one Body variant. It is owned by whoever
// created it until Codec.Release.
type Message struct {
	Type  MsgType
	TxnID uint64
	Body  Body

	// home is the partition whose pools back the body's arrays.
	home     uint64
	released bool
}

func (m *Message) String() string {
	return fmt.Sprintf("%s txn:%d %+v", m.Type, m.TxnID, m.Body)
}

// Body is the closed set of message payloads. Every variant's transaction id
// is the header's TxnID.
type Body interface {
	isBody()
}

type InitDone struct{}

type Finish struct {
	PartitionID uint64
	RC          txn.RC
	BatchID     uint64
	ReadOnly    bool
}

type QueryResponse struct {
	RC          txn.RC
	PartitionID uint64
}

type Ack struct {
	RC txn.RC
	// CALVIN only.
	BatchID uint64
}

type Init struct {
	Timestamp   uint64
	PartitionID uint64
}

type Prepare struct {
	PartitionID uint64
	RC          txn.RC
}

type Forward struct {
	BatchID uint64
	// TPCC only.
	OrderID uint64
}

type Done struct {
	BatchID uint64
}

type ClientResponse struct {
	RC            txn.RC
	ClientStartTS uint64
}

type ClientQuery struct {
	PartitionID uint64
	Timestamp   uint64
	// CALVIN only.
	BatchID    uint64
	Partitions []uint64
}

type YCSBClientQuery struct {
	ClientQuery
	Requests []txn.Request
}

type Query struct {
	PartitionID uint64
	// WAIT_DIE, TIMESTAMP, MVCC and VLL.
	Timestamp uint64
	// MVCC only.
	ThreadID uint64
	// OCC only.
	StartTimestamp uint64
	// QRY_ONLY mode only.
	MaxAccess uint64
}

type YCSBQuery struct {
	Query
	Requests []txn.Request
}

func (*InitDone) isBody()        {}
func (*Finish) isBody()          {}
func (*QueryResponse) isBody()   {}
func (*Ack) isBody()             {}
func (*Init) isBody()            {}
func (*Prepare) isBody()         {}
func (*Forward) isBody()         {}
func (*Done) isBody()            {}
func (*ClientResponse) isBody()  {}
func (*ClientQuery) isBody()     {}
func (*YCSBClientQuery) isBody() {}
func (*Query) isBody()           {}
func (*YCSBQuery) isBody()       {}
