package extract

import "errors"

// Per-pair failures. None of them stops an article; the error text becomes
// the note of the pair's PathRecord.
var (
	ErrAlignmentFailure      = errors.New("entity mention could not be aligned to any sentence")
	ErrPathNotFound          = errors.New("no dependency path between the entities")
	ErrCrossPathNotFound     = errors.New("no cross-sentence dependency path between the entities")
	ErrCrossNodeMissing      = errors.New("entity anchor missing from the cross-sentence graph")
	ErrCrossSentenceDisabled = errors.New("entities are in different sentences and cross-sentence search is disabled")
)

// Event names logged for each failure, plus the per-article summary.
const (
	EventAlignFail     = "ALIGN_FAIL"
	EventNoPath        = "NO_PATH"
	EventNoCrossPath   = "NO_CROSS_PATH"
	EventCrossNodeMiss = "CROSS_NODE_MISS"
	EventCrossDisabled = "CROSS_DISABLED"
	EventDone          = "DONE"
)

// EventOf returns the log event name of a per-pair failure.
func EventOf(err error) string {
	switch {
	case errors.Is(err, ErrAlignmentFailure):
		return EventAlignFail
	case errors.Is(err, ErrPathNotFound):
		return EventNoPath
	case errors.Is(err, ErrCrossPathNotFound):
		return EventNoCrossPath
	case errors.Is(err, ErrCrossNodeMissing):
		return EventCrossNodeMiss
	case errors.Is(err, ErrCrossSentenceDisabled):
		return EventCrossDisabled
	}
	return ""
}
