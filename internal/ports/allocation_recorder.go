package ports

import "time"

// Allocation outcomes reported to an AllocationRecorder.
const (
	OutcomeFulfilled  = "fulfilled"
	OutcomeInfeasible = "infeasible"
	OutcomeEmpty      = "empty"
	OutcomeInvalid    = "invalid"
)

// Contract for observing allocation runs (metrics, audit).
type AllocationRecorder interface {
	ObserveAllocation(outcome string, planWarehouses int, dur time.Duration)
	ObserveCache(result string)
}

// Plan cache lookup results reported to an AllocationRecorder.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
