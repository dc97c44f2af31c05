package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Highlight marks the endpoints of the most recent move.
type Highlight struct {
	From nchess.Square
	To   nchess.Square
}

type Renderer interface {
	RenderPNG(fen string, highlight *Highlight) ([]byte, error)
}

type boardRenderer struct{}

func NewBoardRenderer() Renderer {
	return &boardRenderer{}
}

const (
	squareSize = 64
	boardSize  = squareSize * 8
	margin     = 24
)

var (
	lightSquare   = color.RGBA{233, 207, 163, 255}
	darkSquare    = color.RGBA{187, 136, 96, 255}
	highlightFill = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	frameColor    = color.NRGBA{R: 28, G: 31, B: 46, A: 255}
	coordColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
)

var (
	boardRanks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	boardFiles = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
)

func (r *boardRenderer) RenderPNG(fen string, highlight *Highlight) ([]byte, error) {
	fenOpt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	board := nchess.NewGame(fenOpt).Position().Board()

	total := boardSize + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, imagedraw.Src)

	origin := image.Point{X: margin, Y: margin}
	drawSquares(img, origin)
	if highlight != nil {
		drawSquareOverlay(img, highlight.From, origin)
		drawSquareOverlay(img, highlight.To, origin)
	}
	if err := drawPieces(img, board, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, origin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SquareFromName parses a square name like "e2". The second return is false
// for anything that is not a board square.
func SquareFromName(name string) (nchess.Square, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		var zero nchess.Square
		return zero, false
	}
	return nchess.NewSquare(nchess.File(name[0]-'a'), nchess.Rank(name[1]-'1')), true
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row, rank := range boardRanks {
		for col, file := range boardFiles {
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			clr := lightSquare
			if (int(file)+int(rank))%2 == 0 {
				clr = darkSquare
			}
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawSquareOverlay(dst imagedraw.Image, sq nchess.Square, origin image.Point) {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(highlightFill), image.Point{}, imagedraw.Over)
}

func drawPieces(dst imagedraw.Image, board *nchess.Board, origin image.Point) error {
	for row, rank := range boardRanks {
		for col, file := range boardFiles {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			img, err := pieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawCoordinates(img *image.RGBA, origin image.Point) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(coordColor),
		Face: basicfont.Face7x13,
	}
	for col := 0; col < 8; col++ {
		d.Dot = fixed.P(origin.X+col*squareSize+squareSize/2-3, origin.Y+boardSize+margin/2+5)
		d.DrawString(string(rune('a' + col)))
	}
	for row := 0; row < 8; row++ {
		d.Dot = fixed.P(origin.X-margin/2-3, origin.Y+row*squareSize+squareSize/2+5)
		d.DrawString(string(rune('8' - row)))
	}
}
