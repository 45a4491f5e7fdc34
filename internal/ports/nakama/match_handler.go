package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"goarena/internal/app"
	"goarena/internal/config"
	"goarena/internal/domain"
	"goarena/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Match label keys used in matchmaking queries.
const (
	MatchLabelKey_Open  = "open"
	MatchLabelKey_Game  = "game"
	MatchLabelKey_Phase = "phase"
)

// tickRate is MatchLoop invocations per second. Four keeps live clocks fresh
// enough for byo-yomi countdowns without flooding the loop.
const tickRate = 4

// MatchLabel is the JSON document published through MatchLabelUpdate for
// matchmaking queries.
type MatchLabel struct {
	Open  string `json:"open"` // "T" when a seat is free, "F" otherwise
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// GameConfig is the host's game selection, kept so a rematch can restart with
// identical settings.
type GameConfig struct {
	Game             string  `json:"game"`
	BoardSize        int     `json:"board_size"`
	Komi             float64 `json:"komi"`
	TimeMode         string  `json:"time_mode"`
	MainSeconds      int     `json:"main_seconds"`
	IncrementSeconds int     `json:"increment_seconds"`
	PeriodSeconds    int     `json:"period_seconds"`
	Periods          int     `json:"periods"`
	TimePreset       string  `json:"time_preset"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [app.ArenaSeats]string      `json:"seats"`     // Array of user IDs, empty string means seat is empty
	HostSeat  int                         `json:"host_seat"` // Seat index of the match host (plays black in Go)
	Tick      int64                       `json:"tick"`      // Current tick of the match
	Config    GameConfig                  `json:"config"`    // Last selected game configuration, used by rematch
	Presences map[string]runtime.Presence `json:"-"`         // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`         // Arena app service with game logic
	Go        *domain.GoMatch             `json:"-"`         // Active Go game (nil outside a Go game)
	Round     *domain.MiniRound           `json:"-"`         // Active mini-game round (nil outside RPS/pennies)
	Recorded  bool                        `json:"recorded"`  // Whether the current game's outcome was persisted
	Stats     ports.StatsPort             `json:"-"`         // Leaderboard and win/loss persistence
	Records   ports.RecordPort            `json:"-"`         // Completed match document persistence
	Tokens    *app.TokenService           `json:"-"`         // Invite token verification for gated joins
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

// seatOf returns the seat index occupied by userID or -1.
func (ms *MatchState) seatOf(userID string) int {
	for i, seatUserID := range ms.Seats {
		if seatUserID != "" && seatUserID == userID {
			return i
		}
	}
	return -1
}

// colorOf maps an occupied seat to its Go color. The host plays black.
func (ms *MatchState) colorOf(seat int) domain.Color {
	if seat < 0 {
		return domain.ColorNone
	}
	if seat == ms.HostSeat {
		return domain.ColorBlack
	}
	return domain.ColorWhite
}

// userOf maps a Go color back to the seated user ID.
func (ms *MatchState) userOf(color domain.Color) string {
	for i, seatUserID := range ms.Seats {
		if seatUserID != "" && ms.colorOf(i) == color {
			return seatUserID
		}
	}
	return ""
}

// roundSeat maps a seat index to the mini-game pick slot. The host is always
// slot 0, which is the matcher in Matching Pennies.
func (ms *MatchState) roundSeat(seat int) int {
	if seat == ms.HostSeat {
		return 0
	}
	return 1
}

// gameActive reports whether any game is currently running or awaiting
// scoring. A completed game stays on state until a rematch resets it.
func (ms *MatchState) gameActive() bool {
	if ms.Go != nil && ms.Go.Phase != domain.PhaseComplete {
		return true
	}
	if ms.Round != nil && !ms.Round.Complete() {
		return true
	}
	return false
}

// phaseLabel describes the room for the matchmaking label.
func (ms *MatchState) phaseLabel() string {
	switch {
	case ms.Go != nil:
		return string(ms.Go.Phase)
	case ms.Round != nil:
		if ms.Round.Complete() {
			return string(domain.PhaseComplete)
		}
		return string(domain.PhasePlay)
	default:
		return "lobby"
	}
}

// Client request payloads.

type selectGameRequest = GameConfig

type placeStoneRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type toggleDeadRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type finalizeScoreRequest struct {
	Method string `json:"method"`
}

type submitPickRequest struct {
	Pick string `json:"pick"`
}

// matchStateSnapshot is broadcast on every roster change.
type matchStateSnapshot struct {
	Seats    []string        `json:"seats"`
	HostSeat int             `json:"host_seat"`
	Tick     int64           `json:"tick"`
	Game     string          `json:"game,omitempty"`
	Phase    string          `json:"phase"`
	Players  []playerSummary `json:"players"`
}

type playerSummary struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	IsHost      bool   `json:"is_host"`
	Color       string `json:"color,omitempty"`
	DisplayName string `json:"display_name"`
}

type gameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load arena configuration
	if err := config.LoadArenaConfig("data/arena_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load arena config: %v", err)
	} else if c := config.GetArenaConfig(); c != nil {
		logger.Debug("MatchInit: Arena config loaded (%d time presets, default preset %q).", len(c.TimePresets), c.DefaultPreset)
	}

	state := &MatchState{
		Tick:      time.Now().Unix(),
		HostSeat:  -1,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		Stats:     NewNakamaStatsAdapter(nk),
		Records:   NewNakamaRecordAdapter(nk),
	}

	// Invite verification uses the same secret the invite_token RPC signs with.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if secret, ok := env["arena_invite_secret"]; ok && secret != "" {
		issuer := env["arena_invite_issuer"]
		if issuer == "" {
			issuer = "goarena"
		}
		state.Tokens = app.NewTokenService(secret, issuer, 0)
	}

	// A game requested at creation time is advertised immediately so
	// game-filtered quick-match queries can find this lobby.
	if g, ok := params["game"].(string); ok && domain.ValidGameKind(domain.GameKind(g)) {
		state.Config.Game = g
	}

	label := &MatchLabel{
		Open:  "T",
		Game:  state.Config.Game,
		Phase: "lobby",
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reconnects to an occupied seat are always allowed.
	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}

	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "Match full"
	}

	// When an invite token is presented it must verify and target this match.
	if token := metadata["invite_token"]; token != "" {
		if matchState.Tokens == nil {
			return state, false, "invites not enabled"
		}
		claims, err := matchState.Tokens.VerifyInvite(token)
		if err != nil {
			logger.Warn("MatchJoinAttempt: Invalid invite from %s: %v", presence.GetUserId(), err)
			return state, false, "invalid invite token"
		}
		matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
		if claims.MatchID != matchID {
			return state, false, "invite is for another match"
		}
		if claims.Role != app.InviteRoleGuest {
			return state, false, "spectators are not supported"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		// Store presence
		matchState.Presences[p.GetUserId()] = p

		// Reconnect keeps the existing seat.
		if matchState.seatOf(p.GetUserId()) >= 0 {
			continue
		}

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
		}
	}

	// First seated player hosts; the host picks the game and plays black.
	if matchState.HostSeat < 0 || matchState.Seats[matchState.HostSeat] == "" {
		matchState.HostSeat = -1
		for i, seatUserID := range matchState.Seats {
			if seatUserID != "" {
				matchState.HostSeat = i
				break
			}
		}
		if matchState.HostSeat >= 0 {
			logger.Debug("MatchJoin: Host set to seat %d.", matchState.HostSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		seat := matchState.seatOf(p.GetUserId())
		if seat < 0 {
			continue
		}

		// Leaving a live Go game forfeits it.
		if matchState.Go != nil && matchState.Go.Phase != domain.PhaseComplete {
			color := matchState.colorOf(seat)
			events, err := matchState.App.Resign(matchState.Go, color)
			if err != nil {
				logger.Error("MatchLeave: Forfeit for %s failed: %v", p.GetUserId(), err)
			} else {
				logger.Info("MatchLeave: User %s forfeits by leaving.", p.GetUserId())
				for _, ev := range events {
					mh.broadcastEvent(matchState, dispatcher, logger, ev)
				}
				mh.persistIfComplete(ctx, matchState, logger)
			}
		}

		// An unresolved mini-game round is abandoned when a player leaves.
		if matchState.Round != nil && !matchState.Round.Complete() {
			matchState.Round = nil
		}

		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), seat)
	}

	// Reassign host to the remaining seated player.
	if matchState.HostSeat < 0 || matchState.Seats[matchState.HostSeat] == "" {
		matchState.HostSeat = -1
		for i, seatUserID := range matchState.Seats {
			if seatUserID != "" {
				matchState.HostSeat = i
				break
			}
		}
	}

	if matchState.GetOccupiedSeatCount() == 0 {
		logger.Info("MatchLeave: Terminating empty match.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpSelectGame:
			mh.handleSelectGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceStone:
			mh.handlePlaceStone(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		case OpToggleDead:
			mh.handleToggleDead(ctx, matchState, dispatcher, logger, msg)
		case OpFinalizeScore:
			mh.handleFinalizeScore(ctx, matchState, dispatcher, logger, msg)
		case OpResign:
			mh.handleResign(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitPick:
			mh.handleSubmitPick(ctx, matchState, dispatcher, logger, msg)
		case OpRematch:
			mh.handleRematch(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// Live clock sweep: the on-turn player loses when their clock runs out
	// between moves, not just when they next act.
	if matchState.Go != nil && matchState.Go.Phase == domain.PhasePlay {
		if events := matchState.App.Tick(matchState.Go); len(events) > 0 {
			for _, ev := range events {
				mh.broadcastEvent(matchState, dispatcher, logger, ev)
			}
			mh.persistIfComplete(ctx, matchState, logger)
			mh.updateLabel(matchState, dispatcher, logger)
		}
	}

	return matchState
}

func (mh *matchHandler) handleSelectGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	request := selectGameRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("SelectGame: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}

	logger.Info("SelectGame: Request for %q from %s (seat=%d, host_seat=%d)", request.Game, senderID, senderSeat, state.HostSeat)

	if senderSeat != state.HostSeat {
		logger.Warn("SelectGame: User %s tried to start a game but is not host (host_seat=%d)", senderID, state.HostSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the host starts games")
		return
	}
	if state.GetOccupiedSeatCount() < app.MinPlayersToStartGame {
		mh.sendError(state, dispatcher, logger, senderID, 400, "waiting for an opponent")
		return
	}
	if state.gameActive() {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrGameRunning.Error())
		return
	}

	if err := mh.startGame(state, dispatcher, logger, request); err != nil {
		logger.Warn("SelectGame: Failed to start %q: %v", request.Game, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Config = request
	mh.updateLabel(state, dispatcher, logger)
}

// startGame creates the game named by cfg and broadcasts the start events.
// Previous game state is replaced.
func (mh *matchHandler) startGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, cfg GameConfig) error {
	kind := domain.GameKind(cfg.Game)

	if kind == domain.GameGo {
		size := cfg.BoardSize
		if size == 0 {
			size = config.GetDefaultBoardSize()
		}
		komi := cfg.Komi
		if komi == 0 {
			komi = config.GetDefaultKomi()
		}

		match, events, err := state.App.StartGo(size, komi, timeSettings(cfg))
		if err != nil {
			return err
		}
		// Seed the configured counting method so a double pass or forced end
		// scores with it unless a player proposes a different one.
		if method := domain.ScoringMethod(config.GetDefaultScoring()); domain.ValidScoringMethod(method) {
			match.Scoring.Method = method
		}
		state.Go = match
		state.Round = nil
		state.Recorded = false
		for _, ev := range events {
			mh.broadcastEvent(state, dispatcher, logger, ev)
		}
		return nil
	}

	round, events, err := state.App.StartRound(kind)
	if err != nil {
		return err
	}
	state.Round = round
	state.Go = nil
	state.Recorded = false
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	return nil
}

// timeSettings resolves explicit clock fields, falling back to the named
// preset from the arena config.
func timeSettings(cfg GameConfig) domain.TimeSettings {
	if cfg.TimeMode == "" {
		preset, ok := config.GetTimePreset(cfg.TimePreset)
		if !ok {
			return domain.TimeSettings{Mode: domain.TimeControlNone}
		}
		return domain.TimeSettings{
			Mode:       domain.TimeControlMode(preset.Mode),
			Main:       time.Duration(preset.MainSeconds) * time.Second,
			Increment:  time.Duration(preset.IncrementSeconds) * time.Second,
			PeriodTime: time.Duration(preset.PeriodSeconds) * time.Second,
			Periods:    preset.Periods,
		}
	}
	return domain.TimeSettings{
		Mode:       domain.TimeControlMode(cfg.TimeMode),
		Main:       time.Duration(cfg.MainSeconds) * time.Second,
		Increment:  time.Duration(cfg.IncrementSeconds) * time.Second,
		PeriodTime: time.Duration(cfg.PeriodSeconds) * time.Second,
		Periods:    cfg.Periods,
	}
}

func (mh *matchHandler) handlePlaceStone(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)
	if senderSeat < 0 || state.Go == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNoActiveGame.Error())
		return
	}

	request := placeStoneRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlaceStone: Malformed request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}

	at := domain.Coord{Row: request.Row, Col: request.Col}
	events, err := state.App.PlaceStone(state.Go, state.colorOf(senderSeat), at)
	if err != nil {
		logger.Warn("handlePlaceStone: User %s (seat %d) rejected at %v: %v", senderID, senderSeat, at, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.persistIfComplete(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)
	if senderSeat < 0 || state.Go == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNoActiveGame.Error())
		return
	}

	events, err := state.App.Pass(state.Go, state.colorOf(senderSeat))
	if err != nil {
		logger.Warn("handlePassTurn: User %s (seat %d) rejected: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.persistIfComplete(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleToggleDead(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) < 0 || state.Go == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNoActiveGame.Error())
		return
	}

	request := toggleDeadRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}

	events, err := state.App.ToggleDeadStone(state.Go, domain.Coord{Row: request.Row, Col: request.Col})
	if err != nil {
		logger.Warn("handleToggleDead: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleFinalizeScore(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) < 0 || state.Go == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNoActiveGame.Error())
		return
	}

	request := finalizeScoreRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}

	events, err := state.App.FinalizeScore(state.Go, domain.ScoringMethod(request.Method), senderID, state.GetOccupiedSeatCount())
	if err != nil {
		logger.Warn("handleFinalizeScore: User %s rejected (%q): %v", senderID, request.Method, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.persistIfComplete(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleResign(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)
	if senderSeat < 0 || state.Go == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNoActiveGame.Error())
		return
	}

	events, err := state.App.Resign(state.Go, state.colorOf(senderSeat))
	if err != nil {
		logger.Warn("handleResign: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.persistIfComplete(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleSubmitPick(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)
	if senderSeat < 0 || state.Round == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNoActiveGame.Error())
		return
	}

	request := submitPickRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}

	events, err := state.App.SubmitPick(state.Round, state.roundSeat(senderSeat), request.Pick)
	if err != nil {
		logger.Warn("handleSubmitPick: User %s rejected (%q): %v", senderID, request.Pick, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	if state.Round.Complete() {
		mh.persistRoundOutcome(ctx, state, logger)
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) handleRematch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)
	if senderSeat != state.HostSeat {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the host starts games")
		return
	}
	if state.gameActive() {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrGameRunning.Error())
		return
	}
	if state.Config.Game == "" {
		mh.sendError(state, dispatcher, logger, senderID, 400, "no previous game to restart")
		return
	}
	if state.GetOccupiedSeatCount() < app.MinPlayersToStartGame {
		mh.sendError(state, dispatcher, logger, senderID, 400, "waiting for an opponent")
		return
	}

	if err := mh.startGame(state, dispatcher, logger, state.Config); err != nil {
		logger.Error("handleRematch: Failed to restart %q: %v", state.Config.Game, err)
		mh.sendError(state, dispatcher, logger, senderID, 500, err.Error())
		return
	}
	mh.updateLabel(state, dispatcher, logger)
}

// persistIfComplete records the Go game's outcome the first time the match
// reaches its terminal phase.
func (mh *matchHandler) persistIfComplete(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Go == nil || state.Go.Phase != domain.PhaseComplete || state.Recorded {
		return
	}
	state.Recorded = true

	result := state.Go.Result
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	outcome := ports.MatchOutcome{
		MatchID: matchID,
		Game:    string(domain.GameGo),
		Reason:  result.Reason,
	}
	if result.Winner == domain.ColorNone {
		outcome.Draw = true
		outcome.WinnerID = state.userOf(domain.ColorBlack)
		outcome.LoserID = state.userOf(domain.ColorWhite)
	} else {
		outcome.WinnerID = state.userOf(result.Winner)
		outcome.LoserID = state.userOf(result.Winner.Opponent())
	}

	if state.Stats != nil {
		if err := state.Stats.RecordOutcome(ctx, outcome); err != nil {
			logger.Error("persistIfComplete: Failed to record outcome: %v", err)
		}
	}

	if state.Records != nil {
		record := ports.MatchRecord{
			MatchID:   matchID,
			Game:      string(domain.GameGo),
			BlackID:   state.userOf(domain.ColorBlack),
			WhiteID:   state.userOf(domain.ColorWhite),
			WinnerID:  outcome.WinnerID,
			Reason:    result.Reason,
			Komi:      state.Go.Komi,
			BoardSize: state.Go.Board.Size,
			Scores: map[string]any{
				"black":   result.Black,
				"white":   result.White,
				"method":  result.Method,
				"message": result.Message,
			},
		}
		if outcome.Draw {
			record.WinnerID = ""
		}
		if err := state.Records.SaveRecord(ctx, record); err != nil {
			logger.Error("persistIfComplete: Failed to save record: %v", err)
		}
	}
}

// persistRoundOutcome records a resolved mini-game round once.
func (mh *matchHandler) persistRoundOutcome(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Round == nil || !state.Round.Complete() || state.Recorded {
		return
	}
	state.Recorded = true
	if state.Stats == nil || state.HostSeat < 0 {
		return
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	winnerSeat := state.Round.Resolve()

	host := state.Seats[state.HostSeat]
	guest := ""
	for i, seatUserID := range state.Seats {
		if i != state.HostSeat && seatUserID != "" {
			guest = seatUserID
		}
	}

	outcome := ports.MatchOutcome{
		MatchID: matchID,
		Game:    string(state.Round.Kind),
		Reason:  "round",
	}
	switch winnerSeat {
	case -1:
		outcome.Draw = true
		outcome.WinnerID = host
		outcome.LoserID = guest
	case 0:
		outcome.WinnerID = host
		outcome.LoserID = guest
	default:
		outcome.WinnerID = guest
		outcome.LoserID = host
	}

	if err := state.Stats.RecordOutcome(ctx, outcome); err != nil {
		logger.Error("persistRoundOutcome: Failed to record outcome: %v", err)
	}
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var players []playerSummary
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		}

		color := ""
		if state.Go != nil {
			color = state.colorOf(i).String()
		}

		players = append(players, playerSummary{
			UserID:      userID,
			Seat:        i,
			IsHost:      i == state.HostSeat,
			Color:       color,
			DisplayName: displayName,
		})
	}

	snapshot := matchStateSnapshot{
		Seats:    state.Seats[:],
		HostSeat: state.HostSeat,
		Tick:     state.Tick,
		Game:     state.Config.Game,
		Phase:    state.phaseLabel(),
		Players:  players,
	}
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, bytes, nil, nil, true)
}

// eventOpCodes maps app events onto wire opcodes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventGameStarted:       OpGameStarted,
	app.EventMoveApplied:       OpMoveApplied,
	app.EventPassApplied:       OpPassApplied,
	app.EventDeadStonesUpdated: OpDeadStonesUpdated,
	app.EventScoringPending:    OpScoringPending,
	app.EventScoringFinalized:  OpScoringFinalized,
	app.EventTimeExpired:       OpTimeExpired,
	app.EventResigned:          OpResigned,
	app.EventRoundResolved:     OpRoundResolved,
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If the intended recipients are all disconnected we must not widen
		// the audience to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendError sends a gameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload := gameErrorEvent{
		Code:    code,
		Message: message,
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal gameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	open := "F"
	if state.GetOpenSeatsCount() > 0 {
		open = "T"
	}

	label := &MatchLabel{
		Open:  open,
		Game:  state.Config.Game,
		Phase: state.phaseLabel(),
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
