package stats

// Field is a per-thread counter or gauge.
type Field int

const (
	TxnCnt Field = iota
	LocalTxnCommitCnt
	RemoteTxnCommitCnt
	TxnAbortCnt
	TxnRunTime
	ProcessTime
	MsgSentCnt
	MsgRcvCnt
	MsgBytesSent
	MsgBytesRcv
	MsgEncodeTime
	MsgDecodeTime
	MsgReleaseCnt
	numFields
)

var fieldNames = [numFields]string{
	"txn_cnt",
	"local_txn_commit_cnt",
	"remote_txn_commit_cnt",
	"txn_abort_cnt",
	"txn_run_time",
	"process_time",
	"msg_sent_cnt",
	"msg_rcv_cnt",
	"msg_bytes_sent",
	"msg_bytes_rcv",
	"msg_encode_time",
	"msg_decode_time",
	"msg_release_cnt",
}

func (f Field) String() string { return fieldNames[f] }

// ArrField is a per-thread collection of samples kept for percentiles.
type ArrField int

const (
	ClientLatency ArrField = iota
	MsgSize
	MsgDecodeLatency
	numArrFields
)

var arrFieldNames = [numArrFields]string{
	"client_latency",
	"msg_size",
	"msg_decode_latency",
}

func (f ArrField) String() string { return arrFieldNames[f] }

// GlobalField is shared by all threads and only updated atomically.
type GlobalField int

const (
	GlobTxnCnt GlobalField = iota
	GlobAbortCnt
	GlobMsgCnt
	GlobMsgBytes
	numGlobalFields
)

var globalFieldNames = [numGlobalFields]string{
	"glob_txn_cnt",
	"glob_abort_cnt",
	"glob_msg_cnt",
	"glob_msg_bytes",
}

func (f GlobalField) String() string { return globalFieldNames[f] }
