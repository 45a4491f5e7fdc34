package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an open arena match.
	RpcQuickMatch = "quick_match"

	// RpcInviteToken is the Nakama RPC id hosts call to mint a signed invite for their match.
	RpcInviteToken = "invite_token"

	// MatchNameArena is the authoritative match handler name registered with Nakama.
	MatchNameArena = "arena_match"

	// LeaderboardWins aggregates per-player win counts across all arena games.
	LeaderboardWins = "arena_wins"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpSelectGame    int64 = 1
	OpPlaceStone    int64 = 2
	OpPassTurn      int64 = 3
	OpToggleDead    int64 = 4
	OpFinalizeScore int64 = 5
	OpResign        int64 = 6
	OpSubmitPick    int64 = 7
	OpRematch       int64 = 8

	// Server -> Client events
	OpMatchState        int64 = 101
	OpGameStarted       int64 = 102
	OpMoveApplied       int64 = 103
	OpPassApplied       int64 = 104
	OpDeadStonesUpdated int64 = 105
	OpScoringPending    int64 = 106
	OpScoringFinalized  int64 = 107
	OpTimeExpired       int64 = 108
	OpResigned          int64 = 109
	OpRoundResolved     int64 = 110
	OpGameError         int64 = 120
)
