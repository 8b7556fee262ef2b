package message

import (
	"github.com/pingcap-incubator/txnbed/config"
)

// Capabilities records which optional fields the deployment puts on the
// wire. Both ends of a link must be built from the same configuration; the
// encoding carries no version.
type Capabilities struct {
	// Ack and ClientQuery carry BatchID (CALVIN).
	BatchIDs bool
	// Forward carries OrderID (TPCC).
	ForwardOrderID bool
	// Query carries Timestamp (WAIT_DIE, TIMESTAMP, MVCC, VLL).
	QueryTimestamp bool
	// Query carries ThreadID (MVCC). Never set together with QueryStartTS.
	QueryThreadID bool
	// Query carries StartTimestamp (OCC).
	QueryStartTS bool
	// Query carries MaxAccess (QRY_ONLY mode).
	QueryMaxAccess bool
	// Query and ClientQuery are the YCSB variants carrying requests.
	YCSBRequests bool
}

// CapabilitiesFor derives the capability table of a deployment.
func CapabilitiesFor(alg config.CCAlg, workload config.Workload, mode config.Mode) Capabilities {
	caps := Capabilities{
		BatchIDs:       alg == config.Calvin,
		ForwardOrderID: workload == config.TPCC,
		QueryMaxAccess: mode == config.QryOnlyMode,
		YCSBRequests:   workload == config.YCSB,
	}
	switch alg {
	case config.WaitDie, config.Timestamp, config.MVCC, config.VLL:
		caps.QueryTimestamp = true
	}
	switch alg {
	case config.MVCC:
		caps.QueryThreadID = true
	case config.OCC:
		caps.QueryStartTS = true
	}
	return caps
}

func CapabilitiesFromConfig(conf *config.Config) Capabilities {
	return CapabilitiesFor(conf.CCAlg, conf.Workload, conf.Mode)
}
