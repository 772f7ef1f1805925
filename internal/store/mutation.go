package store

import "time"

// OpKind names the mutation kinds the memcached-style wire protocol maps
// onto, per spec.md §3.
type OpKind uint8

const (
	OpSet OpKind = iota
	OpAdd
	OpReplace
	OpCas
	OpAppend
	OpPrepend
	OpIncr
	OpDecr
	OpDelete
)

// Expiry models "never expires" as the zero value.
type Expiry time.Time

func NeverExpires() Expiry { return Expiry{} }

func (e Expiry) IsNever() bool { return time.Time(e).IsZero() }

// Mutation is the tagged record every write path carries: a key, an
// operation kind, and operation-specific payload.
type Mutation struct {
	Key   Key
	Op    OpKind
	Value Value
	Flags uint32
	Exptime Expiry
	// CasUnique is read by OpCas to require the existing value's CAS id
	// to match before applying.
	CasUnique uint64
	// DataProviderErr, if non-nil, signals that assembling Value failed
	// upstream (e.g. a short read off the wire); the mutation must be
	// rejected with DataProviderFailed rather than applied.
	DataProviderErr error
	// Delta is read by OpIncr/OpDecr.
	Delta uint64
}

// MutationResult is the value (never an error) returned from the write
// path. Anything other than Stored is a legitimate outcome of a correctly
// formed request, not a fault.
type MutationResult struct {
	Code       ResultCode
	NewValue   Value // result of incr/decr, or the value already present on a failed cas/add
	Castime    CasTime
	NotAllowed bool
}

type ResultCode uint8

const (
	ResultStored ResultCode = iota
	ResultNotStored
	ResultExists
	ResultNotFound
	ResultTooLarge
	ResultDataProviderFailed
	ResultNotAllowed
)

func (c ResultCode) String() string {
	switch c {
	case ResultStored:
		return "stored"
	case ResultNotStored:
		return "not_stored"
	case ResultExists:
		return "exists"
	case ResultNotFound:
		return "not_found"
	case ResultTooLarge:
		return "too_large"
	case ResultDataProviderFailed:
		return "data_provider_failed"
	case ResultNotAllowed:
		return "not_allowed"
	default:
		return "unknown"
	}
}
