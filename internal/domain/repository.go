package domain

import "context"

// HistorySink receives entries produced by completed transforms.
type HistorySink interface {
	Append(ctx context.Context, entry HistoryEntry) error
}
