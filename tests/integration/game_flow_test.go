package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// Client -> Server opcodes.
const (
	OpSelectGame int64 = 1
	OpPlaceStone int64 = 2
	OpSubmitPick int64 = 7
)

// Server -> Client opcodes.
const (
	OpGameStarted   int64 = 102
	OpMoveApplied   int64 = 103
	OpRoundResolved int64 = 110
)

func TestGoGameStartAndFirstMove(t *testing.T) {
	// 1. Create 2 Clients
	clients := make([]*TestClient, 2)
	for i := 0; i < 2; i++ {
		clients[i] = NewTestClient(t)
		defer clients[i].Close()
	}
	t.Log("Created 2 clients")

	// 2. Client 0 creates a match (via quick_match RPC which creates if none found)
	matchID := clients[0].FindAndJoinMatch(t, "go")
	t.Logf("Client 0 created/joined match: %s", matchID)

	// 3. Client 1 joins the SAME match
	if _, err := clients[1].Socket.JoinMatch(context.Background(), nil, matchID, nil); err != nil {
		t.Fatalf("Client 1 failed to join match: %v", err)
	}
	t.Log("Client 1 joined match")

	// Wait a bit for presences to sync
	time.Sleep(1 * time.Second)

	// 4. Client 0 (Host) starts a 9x9 Go game
	t.Log("Client 0 sending SelectGame...")
	clients[0].SendJSON(t, matchID, OpSelectGame, map[string]interface{}{
		"game":       "go",
		"board_size": 9,
		"komi":       6.5,
	})

	// 5. Assert: Both clients receive the GameStarted event
	for i, c := range clients {
		t.Logf("Waiting for GameStarted on Client %d...", i)
		data := c.WaitForMatchState(t, OpGameStarted, 5*time.Second)

		var event struct {
			Game      string  `json:"game"`
			BoardSize int     `json:"board_size"`
			Komi      float64 `json:"komi"`
		}
		if err := json.Unmarshal(data.Data, &event); err != nil {
			t.Errorf("Client %d failed to unmarshal GameStarted: %v", i, err)
			continue
		}
		if event.Game != "go" || event.BoardSize != 9 {
			t.Errorf("Client %d got game=%q size=%d, want go/9", i, event.Game, event.BoardSize)
		}
	}

	// 6. Client 0 plays black's first stone
	t.Log("Client 0 placing first stone...")
	clients[0].SendJSON(t, matchID, OpPlaceStone, map[string]int{"row": 2, "col": 2})

	for i, c := range clients {
		data := c.WaitForMatchState(t, OpMoveApplied, 5*time.Second)

		var event struct {
			Color string `json:"color"`
			At    struct {
				Row int `json:"row"`
				Col int `json:"col"`
			} `json:"at"`
			NextTurn string `json:"next_turn"`
		}
		if err := json.Unmarshal(data.Data, &event); err != nil {
			t.Errorf("Client %d failed to unmarshal MoveApplied: %v", i, err)
			continue
		}
		if event.Color != "black" || event.NextTurn != "white" {
			t.Errorf("Client %d saw color=%q next_turn=%q, want black/white", i, event.Color, event.NextTurn)
		}
		if event.At.Row != 2 || event.At.Col != 2 {
			t.Errorf("Client %d saw move at (%d,%d), want (2,2)", i, event.At.Row, event.At.Col)
		}
	}

	t.Log("TestPassed: Go game started and first move applied.")
}

func TestRPSRoundResolution(t *testing.T) {
	clients := make([]*TestClient, 2)
	for i := 0; i < 2; i++ {
		clients[i] = NewTestClient(t)
		defer clients[i].Close()
	}

	matchID := clients[0].FindAndJoinMatch(t, "rps")
	if _, err := clients[1].Socket.JoinMatch(context.Background(), nil, matchID, nil); err != nil {
		t.Fatalf("Client 1 failed to join match: %v", err)
	}
	time.Sleep(1 * time.Second)

	clients[0].SendJSON(t, matchID, OpSelectGame, map[string]interface{}{"game": "rps"})
	for i, c := range clients {
		c.WaitForMatchState(t, OpGameStarted, 5*time.Second)
		t.Logf("Client %d saw the round start", i)
	}

	clients[0].SendJSON(t, matchID, OpSubmitPick, map[string]string{"pick": "rock"})
	clients[1].SendJSON(t, matchID, OpSubmitPick, map[string]string{"pick": "scissors"})

	data := clients[1].WaitForMatchState(t, OpRoundResolved, 5*time.Second)
	var event struct {
		Game       string    `json:"game"`
		Picks      [2]string `json:"picks"`
		WinnerSeat int       `json:"winner_seat"`
	}
	if err := json.Unmarshal(data.Data, &event); err != nil {
		t.Fatalf("Failed to unmarshal RoundResolved: %v", err)
	}
	if event.WinnerSeat != 0 {
		t.Errorf("Rock beats scissors: winner_seat = %d, want 0", event.WinnerSeat)
	}

	t.Log("TestPassed: RPS round resolved.")
}
