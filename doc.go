package txnbed

/*
txnbed is the messaging core of a distributed OLTP testbed used to compare concurrency control protocols (NO_WAIT,
WAIT_DIE, TIMESTAMP, MVCC, OCC, VLL and CALVIN) over a partitioned cluster. It is intended for experimentation, not for
production use.

Building txnbed produces one executable, txnbed-msgbench, which drives YCSB client queries through the message codec and
an in-process transport and prints the collected statistics.

The `txnbed` module is organized into the following packages:

* `transport/message`: the message kinds exchanged between clients, coordinators and partitions, and their wire codec.
  Which optional fields a message carries is decided once per deployment by the concurrency control algorithm, workload
  and mode.
* `transport`: length prefixed framing and the loopback transport that delivers decoded messages to per node workers.
* `stats`: per thread counters and sample collections, global atomic counters, reports and a prometheus collector.
* `txn`: result codes, requests and the query state messages are built from.
* `storage`: item identifiers and the hash index chaining them.
* `config`: deployment configuration.
* `util`: atomics, cache line aware allocation, intrusive lists, the deterministic generator, key helpers and workers.
*/
