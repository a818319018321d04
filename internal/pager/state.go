// Package pager holds the two paging state machines used by the log views:
// an offset pager addressed by page number and an accumulating pager that
// appends pages until a short page signals the end.
//
// Pagers are owned by one view each. They are safe for concurrent use, allow
// at most one fetch in flight, and drop results that arrive after a reset.
package pager

// State is the lifecycle position of a pager.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateHasMore
	StateExhausted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateHasMore:
		return "has_more"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
