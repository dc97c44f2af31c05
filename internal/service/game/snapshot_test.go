package game

import (
	"testing"

	"github.com/kapu/chess-duel-go/internal/rules"
)

func TestCapturedPiecesStartEmpty(t *testing.T) {
	f := &fakeSearcher{}
	svc := newTestService(t, f)
	state := svc.State()
	if len(state.CapturedWhite) != 0 || len(state.CapturedBlack) != 0 {
		t.Fatalf("captured lists must start empty: %v %v", state.CapturedWhite, state.CapturedBlack)
	}
	if state.CapturedWhite == nil || state.CapturedBlack == nil {
		t.Fatal("captured lists must serialize as [], not null")
	}
}

func TestCapturedPawnAfterExchange(t *testing.T) {
	f := &fakeSearcher{moves: []string{"d7d5"}}
	svc := newTestService(t, f)
	if _, err := svc.NewGame("black", 8); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if _, err := svc.PlayerMove("e2e4", ""); err != nil {
		t.Fatalf("PlayerMove: %v", err)
	}
	svc.EngineMove()
	state, err := svc.PlayerMove("e4d5", "")
	if err != nil {
		t.Fatalf("capture move: %v", err)
	}
	if len(state.CapturedWhite) != 0 {
		t.Fatalf("white lost nothing: %v", state.CapturedWhite)
	}
	if len(state.CapturedBlack) != 1 || state.CapturedBlack[0] != "♟" {
		t.Fatalf("captured black = %v, want one black pawn marker", state.CapturedBlack)
	}
}

func TestCapturedOrderQueenFirst(t *testing.T) {
	pos := rules.NewBoardOracle()
	// Both queens come off, plus white's knight and black's light-squared
	// bishop, so each list gets its queen-first ordering checked.
	for _, mv := range []string{"d2d4", "d7d5", "b1c3", "d8d6", "c3b5", "d6d8", "d1d3", "b8c6", "d3h3", "c8h3", "g2h3", "d8d6", "b5d6", "e7d6"} {
		if err := pos.Push(mv); err != nil {
			t.Fatalf("push %s: %v", mv, err)
		}
	}
	capturedWhite, capturedBlack := capturedPieces(pos)
	// The knight fell last but the queen still leads its list.
	if len(capturedWhite) != 2 || capturedWhite[0] != "♕" || capturedWhite[1] != "♘" {
		t.Fatalf("captured white = %v, want queen then knight", capturedWhite)
	}
	if len(capturedBlack) != 2 || capturedBlack[0] != "♛" || capturedBlack[1] != "♝" {
		t.Fatalf("captured black = %v, want queen then bishop", capturedBlack)
	}
}

func TestSnapshotLastMove(t *testing.T) {
	f := &fakeSearcher{}
	svc := newTestService(t, f)
	if _, err := svc.NewGame("black", 8); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if last := svc.State().LastMove; last != nil {
		t.Fatalf("fresh game has no last move, got %+v", last)
	}
	state, err := svc.PlayerMove("g1f3", "")
	if err != nil {
		t.Fatalf("PlayerMove: %v", err)
	}
	if state.LastMove == nil || state.LastMove.FromSq != "g1" || state.LastMove.ToSq != "f3" {
		t.Fatalf("last move = %+v", state.LastMove)
	}
	from, to := svc.LastMoveSquares()
	if from != "g1" || to != "f3" {
		t.Fatalf("LastMoveSquares = %s %s", from, to)
	}
}
