// Package progress defines the event stream emitted while a crawl runs.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart      Stage = "RUN_START"
	StageRunDone       Stage = "RUN_DONE"
	StageListFetched   Stage = "LIST_FETCHED"
	StageDetailFetched Stage = "DETAIL_FETCHED"
	StageRecordEmitted Stage = "RECORD_EMITTED"
	StageFailure       Stage = "FAILURE"
)

// Failure reasons carried on StageFailure events; they mirror the crawl's
// failure taxonomy.
const (
	ReasonFetchFailure      = "fetch_failure"
	ReasonMalformedList     = "malformed_list_payload"
	ReasonMalformedDetail   = "malformed_detail_payload"
	ReasonMissingDescBlocks = "missing_description_blocks"
	ReasonMissingFilters    = "missing_filter_labels"
	ReasonSinkFailure       = "sink_failure"
)

// Event captures a single crawl milestone.
type Event struct {
	// RunID identifies one crawl run in 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Category scopes list events to a category slug.
	Category string
	// Page carries the list page number for list events.
	Page int
	// URL is the fetched API URL, when one applies.
	URL string
	// Bytes carries the response body size for fetch events.
	Bytes int64
	// Dur captures fetch latency or total run time.
	Dur time.Duration
	// Reason classifies StageFailure events.
	Reason string
	// Note attaches low-volume debug context such as error text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRecordEmitted:
	case StageListFetched:
		if e.Category == "" {
			return errors.New("list event requires category")
		}
	case StageDetailFetched:
		if e.URL == "" {
			return errors.New("detail event requires url")
		}
	case StageFailure:
		if e.Reason == "" {
			return errors.New("failure event requires reason")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID back to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
