package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"goarena/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcInviteToken, rpcInviteToken)
}

// InviteTokenRequest asks for an invite into the caller's match.
type InviteTokenRequest struct {
	MatchID string `json:"match_id"`
	Role    string `json:"role"`
}

// InviteTokenResponse carries the signed token back to the host.
type InviteTokenResponse struct {
	Token string `json:"token"`
}

// rpcInviteToken mints a signed invite token for the caller's match. The
// bearer presents it in the join metadata of the named match.
func rpcInviteToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("no user session", 16) // UNAUTHENTICATED
	}

	request := InviteTokenRequest{}
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", runtime.NewError("malformed payload", 3) // INVALID_ARGUMENT
	}
	if request.MatchID == "" {
		return "", runtime.NewError("match_id is required", 3)
	}
	if request.Role == "" {
		request.Role = app.InviteRoleGuest
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["arena_invite_secret"]
	if secret == "" {
		return "", runtime.NewError("invites not enabled", 13) // INTERNAL
	}
	issuer := env["arena_invite_issuer"]
	if issuer == "" {
		issuer = "goarena"
	}

	tokens := app.NewTokenService(secret, issuer, 0)
	token, err := tokens.GenerateInvite(userID, request.MatchID, request.Role)
	if err != nil {
		logger.Error("rpcInviteToken [User:%s]: Failed to sign invite: %v", userID, err)
		return "", runtime.NewError("failed to sign invite", 13)
	}

	b, _ := json.Marshal(InviteTokenResponse{Token: token})
	return string(b), nil
}
