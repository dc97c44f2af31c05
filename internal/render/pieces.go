package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Piece glyphs are inline SVG so the renderer ships without asset files.
const (
	whiteFill = "#f9f9f9"
	blackFill = "#2f2f2f"
	lineColor = "#1a1a1a"
)

var pieceGlyphs = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="13" r="6"/>` +
		`<path d="M16 30 L18 19 L27 19 L29 30 Z"/>` +
		`<rect x="12" y="30" width="21" height="6" rx="2"/>`,
	nchess.Rook: `<path d="M11 36 L11 32 L14 28 L14 15 L11 15 L11 9 L16 9 L16 12 L20 12 L20 9 L25 9 L25 12 L29 12 L29 9 L34 9 L34 15 L31 15 L31 28 L34 32 L34 36 Z"/>`,
	nchess.Knight: `<path d="M13 36 L13 32 Q15 26 15 21 Q15 13 22 10 L22 7 L25 10 Q33 12 33 22 L33 36 Z"/>` +
		`<circle cx="24" cy="15" r="1.5" fill="` + lineColor + `"/>`,
	nchess.Bishop: `<path d="M22.5 8 Q29 14 29 21 Q29 27 22.5 28 Q16 27 16 21 Q16 14 22.5 8 Z"/>` +
		`<circle cx="22.5" cy="6" r="2"/>` +
		`<path d="M15 36 L17 30 L28 30 L30 36 Z"/>`,
	nchess.Queen: `<path d="M10 14 L15 26 L12 34 L33 34 L30 26 L35 14 L28 21 L22.5 11 L17 21 Z"/>` +
		`<rect x="12" y="34" width="21" height="4" rx="1.5"/>`,
	nchess.King: `<rect x="21" y="4" width="3" height="10"/>` +
		`<rect x="17.5" y="7" width="10" height="3"/>` +
		`<path d="M14 36 L15 20 Q22.5 14 30 20 L31 36 Z"/>` +
		`<rect x="12" y="36" width="21" height="4" rx="1.5"/>`,
}

func pieceSVG(piece nchess.Piece) string {
	fill := whiteFill
	if piece.Color() == nchess.Black {
		fill = blackFill
	}
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45">`+
			`<g fill="%s" stroke="%s" stroke-width="1.4" stroke-linejoin="round">%s</g></svg>`,
		fill, lineColor, pieceGlyphs[piece.Type()],
	)
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func pieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(piece)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
