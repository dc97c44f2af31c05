package render

import (
	"bytes"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestRenderPNGStartPosition(t *testing.T) {
	r := NewBoardRenderer()
	data, err := r.RenderPNG(startFEN, nil)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output is not a png")
	}
}

func TestRenderPNGHighlightChangesImage(t *testing.T) {
	r := NewBoardRenderer()
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	plain, err := r.RenderPNG(fen, nil)
	if err != nil {
		t.Fatalf("plain render: %v", err)
	}
	from, ok := SquareFromName("e2")
	if !ok {
		t.Fatal("parse e2")
	}
	to, ok := SquareFromName("e4")
	if !ok {
		t.Fatal("parse e4")
	}
	marked, err := r.RenderPNG(fen, &Highlight{From: from, To: to})
	if err != nil {
		t.Fatalf("highlighted render: %v", err)
	}
	if bytes.Equal(plain, marked) {
		t.Fatal("highlight must alter the image")
	}
}

func TestRenderPNGBadFEN(t *testing.T) {
	r := NewBoardRenderer()
	if _, err := r.RenderPNG("not a fen", nil); err == nil {
		t.Fatal("expected error for malformed fen")
	}
}

func TestSquareFromName(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"a1", true},
		{"h8", true},
		{"E2", true},
		{" d4 ", true},
		{"i1", false},
		{"a9", false},
		{"e", false},
		{"", false},
		{"e2e4", false},
	}
	for _, tc := range cases {
		if _, ok := SquareFromName(tc.in); ok != tc.ok {
			t.Fatalf("SquareFromName(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}
