package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"goarena/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest optionally narrows the search to one game.
type QuickMatchRequest struct {
	Game string `json:"game"`
}

// QuickMatchResponse is the payload returned to clients when requesting a match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	request := QuickMatchRequest{}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", runtime.NewError("malformed payload", 3) // INVALID_ARGUMENT
		}
	}
	if request.Game != "" && !domain.ValidGameKind(domain.GameKind(request.Game)) {
		return "", runtime.NewError("unknown game kind", 3)
	}

	// Find any open lobby, optionally filtered by the game its host picked.
	query := fmt.Sprintf("+label.%s:T +label.%s:lobby", MatchLabelKey_Open, MatchLabelKey_Phase)
	if request.Game != "" {
		query += fmt.Sprintf(" +label.%s:%s", MatchLabelKey_Game, request.Game)
	}

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := 1 // exactly one seated player means one seat is free

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", runtime.NewError("failed to list matches", 13) // INTERNAL
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seat/host assignment happens in MatchJoin
	// (server-authoritative). The requested game is advertised in the label
	// so later game-filtered searches can find this lobby.
	params := map[string]interface{}{}
	if request.Game != "" {
		params["game"] = request.Game
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameArena, params)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchCreate error: %v", userID, err)
		return "", runtime.NewError("failed to create match", 13)
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
