package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"goarena/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const recordsCollection = "match_records"

// NakamaRecordAdapter implements ports.RecordPort using Nakama storage. Each
// completed match is one system-owned document keyed by its match ID.
type NakamaRecordAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaRecordAdapter creates a new record adapter.
func NewNakamaRecordAdapter(nk runtime.NakamaModule) *NakamaRecordAdapter {
	return &NakamaRecordAdapter{nk: nk}
}

// SaveRecord persists the completed match document.
func (a *NakamaRecordAdapter) SaveRecord(ctx context.Context, record ports.MatchRecord) error {
	if record.MatchID == "" {
		return fmt.Errorf("match id is required")
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      recordsCollection,
			Key:             record.MatchID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to save match record: %w", err)
	}
	return nil
}

var _ ports.RecordPort = (*NakamaRecordAdapter)(nil)
