package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goarena/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statsCollection = "player_stats"
	statsKey        = "summary"
)

// playerStats is the per-user win/loss tally persisted in Nakama storage.
type playerStats struct {
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Draws     int    `json:"draws"`
	UpdatedAt string `json:"updated_at"`
}

// NakamaStatsAdapter implements ports.StatsPort and ports.StatsInitPort using
// Nakama storage and leaderboards.
type NakamaStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// EnsureInitialStats writes the zeroed stats document exactly once per user.
// The conditional write (version "*") makes a second login a no-op.
func (a *NakamaStatsAdapter) EnsureInitialStats(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}

	value, err := json.Marshal(playerStats{UpdatedAt: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return false, fmt.Errorf("failed to marshal initial stats: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create initial stats: %w", err)
	}

	return true, nil
}

// RecordOutcome increments both participants' tallies and, for decisive
// results, bumps the winner on the wins leaderboard.
func (a *NakamaStatsAdapter) RecordOutcome(ctx context.Context, outcome ports.MatchOutcome) error {
	if outcome.Draw {
		if err := a.bump(ctx, outcome.WinnerID, 0, 0, 1); err != nil {
			return err
		}
		return a.bump(ctx, outcome.LoserID, 0, 0, 1)
	}

	if err := a.bump(ctx, outcome.WinnerID, 1, 0, 0); err != nil {
		return err
	}
	if err := a.bump(ctx, outcome.LoserID, 0, 1, 0); err != nil {
		return err
	}

	if outcome.WinnerID != "" {
		meta := map[string]interface{}{
			"match_id": outcome.MatchID,
			"game":     outcome.Game,
			"reason":   outcome.Reason,
		}
		if _, err := a.nk.LeaderboardRecordWrite(ctx, LeaderboardWins, outcome.WinnerID, "", 1, 0, meta, nil); err != nil {
			return fmt.Errorf("failed to write leaderboard record: %w", err)
		}
	}
	return nil
}

// bump applies one outcome to a user's stored tally. Missing documents are
// created on the fly so pre-onboarding accounts still get counted.
func (a *NakamaStatsAdapter) bump(ctx context.Context, userID string, wins, losses, draws int) error {
	if userID == "" {
		return nil
	}

	reads := []*runtime.StorageRead{{Collection: statsCollection, Key: statsKey, UserID: userID}}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return fmt.Errorf("failed to read stats for user %s: %w", userID, err)
	}

	stats := playerStats{}
	version := ""
	if len(objects) > 0 {
		if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
			return fmt.Errorf("failed to unmarshal stats for user %s: %w", userID, err)
		}
		version = objects[0].Version
	}

	stats.Wins += wins
	stats.Losses += losses
	stats.Draws += draws
	stats.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	value, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats for user %s: %w", userID, err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          userID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write stats for user %s: %w", userID, err)
	}
	return nil
}

var _ ports.StatsPort = (*NakamaStatsAdapter)(nil)
var _ ports.StatsInitPort = (*NakamaStatsAdapter)(nil)
