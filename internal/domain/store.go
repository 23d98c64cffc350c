package domain

import (
	"context"
	"encoding/json"
)

// RecordStore reads activity records from the hosted database.
// Implementations are shared across requests and must be safe for concurrent use.
type RecordStore interface {
	// FetchActivities returns every record in the order the store listed their keys,
	// with each key copied into ActivityRecord.ID. An empty store yields an empty slice.
	FetchActivities(ctx context.Context) ([]ActivityRecord, error)

	// LatestActivity returns the raw {key: record} object for the last key, or nil when empty.
	LatestActivity(ctx context.Context) (json.RawMessage, error)
}
