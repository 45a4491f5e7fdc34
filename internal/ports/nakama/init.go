package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and match handlers for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameArena, NewMatch); err != nil {
		return err
	}

	// Incremental wins leaderboard; creation is idempotent across restarts.
	if err := nk.LeaderboardCreate(ctx, LeaderboardWins, true, "desc", "incr", "", nil, false); err != nil {
		logger.Warn("InitModule: Could not create wins leaderboard: %v", err)
	}

	logger.Info("Arena Go module loaded.")
	return nil
}
