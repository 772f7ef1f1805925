package netw

// RpcFunc is the shape a coordinator could register to answer inbound
// replication RPCs; this repo is the caller of replication transport,
// never the callee, so nothing in-tree implements it (spec.md §1 treats
// replication transport as an external collaborator).
type RpcFunc func(apiName string, args interface{}, reply interface{}) bool

// ApiReplicate is the only RPC this repo's replication fan-out ever
// issues: push one mutation to a follower. The follower side is the
// external collaborator.
const ApiReplicate = "Replicate"
