package scoreboard

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lanekit/lanekeeper/internal/bowling"
)

//go:embed assets/pin.svg
var assetFiles embed.FS

var (
	cardBackground = color.RGBA{24, 26, 32, 255}
	cellFill       = color.RGBA{38, 41, 50, 255}
	cellBorder     = color.RGBA{70, 74, 86, 255}
	markColor      = image.NewUniform(color.RGBA{235, 235, 235, 255})
	totalColor     = image.NewUniform(color.RGBA{255, 201, 87, 255})
	labelColor     = image.NewUniform(color.RGBA{150, 155, 168, 255})
	knockedSpot    = color.RGBA{60, 63, 74, 255}
)

// Renderer draws a scorecard PNG: the ten-frame grid with marks and running
// totals, plus a pin-deck diagram of the current stance.
type Renderer struct {
	mu       sync.Mutex
	pinCache map[int]image.Image
}

func NewRenderer() *Renderer {
	return &Renderer{pinCache: make(map[int]image.Image)}
}

// positions of the ten pins in the deck diagram, unit grid. Row 0 is the
// back row (pins 7-10), the head pin sits alone at the front.
var pinLayout = [bowling.NumPins]struct{ col, row float64 }{
	{1.5, 3}, // 1
	{1.0, 2}, {2.0, 2}, // 2 3
	{0.5, 1}, {1.5, 1}, {2.5, 1}, // 4 5 6
	{0.0, 0}, {1.0, 0}, {2.0, 0}, {3.0, 0}, // 7 8 9 10
}

// RenderPNG draws the card for one session. standing is the current stance
// shown in the deck diagram; pass nil to show a fresh rack.
func (r *Renderer) RenderPNG(ctx context.Context, s *bowling.GameSession, playerName string, standing []bowling.PinState) ([]byte, error) {
	if s == nil {
		return nil, bowling.ErrNoActiveGame
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	const (
		cellW   = 66
		cellH   = 78
		margin  = 20
		headerH = 34
		deckW   = 170
		deckH   = 150
		pinSize = 34
	)

	gridW := cellW * bowling.NumFrames
	totalW := margin*2 + gridW + margin + deckW
	totalH := margin*2 + headerH + deckH // deck column is taller than the grid

	img := image.NewRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(img, img.Bounds(), image.NewUniform(cardBackground), image.Point{}, draw.Src)

	drawLabel(img, margin, margin+13, playerName, markColor)

	gridTop := margin + headerH
	running := 0
	for i, frame := range s.Frames {
		x := margin + i*cellW
		cell := image.Rect(x, gridTop, x+cellW-4, gridTop+cellH)
		draw.Draw(img, cell, image.NewUniform(cellFill), image.Point{}, draw.Src)
		drawBorder(img, cell, cellBorder)

		drawLabel(img, x+4, gridTop+14, strconv.Itoa(i+1), labelColor)

		marks := FrameMarks(frame, i == bowling.NumFrames-1)
		mx := x + 6
		for _, m := range marks {
			drawLabel(img, mx, gridTop+36, m, markColor)
			mx += 16
		}

		score, err := s.FrameScore(i)
		if err == nil {
			running += score
		}
		if len(frame.Rolls) > 0 {
			drawLabel(img, x+6, gridTop+cellH-10, strconv.Itoa(running), totalColor)
		}
	}

	// pin deck with the current stance
	deckX := margin + gridW + margin
	deckY := gridTop
	if standing == nil {
		standing = bowling.AllStanding()
	}
	for i, pos := range pinLayout {
		px := deckX + int(pos.col*float64(pinSize))
		py := deckY + int(pos.row*float64(pinSize))
		if i < len(standing) && standing[i] == bowling.PinKnocked {
			spot := image.Rect(px+pinSize/3, py+pinSize/3, px+2*pinSize/3, py+2*pinSize/3)
			draw.Draw(img, spot, image.NewUniform(knockedSpot), image.Point{}, draw.Over)
			continue
		}
		pin, err := r.pinImage(pinSize)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, image.Rect(px, py, px+pinSize, py+pinSize), pin, image.Point{}, draw.Over)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// pinImage rasterizes the embedded pin SVG at the given size, cached.
func (r *Renderer) pinImage(size int) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.pinCache[size]; ok {
		return img, nil
	}

	data, err := assetFiles.ReadFile("assets/pin.svg")
	if err != nil {
		return nil, fmt.Errorf("read pin asset: %w", err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse pin svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	r.pinCache[size] = img
	return img, nil
}

func drawLabel(img *image.RGBA, x, y int, text string, src *image.Uniform) {
	d := font.Drawer{
		Dst:  img,
		Src:  src,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func drawBorder(img *image.RGBA, r image.Rectangle, c color.Color) {
	u := image.NewUniform(c)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// CurrentStance derives the pins standing in front of the player right now:
// a fresh rack at the start of a frame, after a tenth-frame strike, or after
// a tenth-frame spare; otherwise whatever the previous roll left up.
func CurrentStance(s *bowling.GameSession) []bowling.PinState {
	if s == nil {
		return bowling.AllStanding()
	}
	for i, f := range s.Frames {
		tenth := i == bowling.NumFrames-1
		switch len(f.Rolls) {
		case 0:
			return bowling.AllStanding()
		case 1:
			if f.Rolls[0].PinsKnocked == bowling.NumPins {
				if tenth {
					return bowling.AllStanding()
				}
				continue // frame closed by the strike
			}
			return remaining(f.Rolls[0])
		case 2:
			if !tenth {
				continue
			}
			if f.Rolls[0].PinsKnocked+f.Rolls[1].PinsKnocked == bowling.NumPins ||
				f.Rolls[1].PinsKnocked == bowling.NumPins {
				return bowling.AllStanding()
			}
			if f.Rolls[0].PinsKnocked == bowling.NumPins {
				return remaining(f.Rolls[1])
			}
			continue
		default:
			continue
		}
	}
	return bowling.AllStanding()
}

// remaining is the stance a roll leaves behind: its knocked pins stay down.
func remaining(r bowling.Roll) []bowling.PinState {
	pins := bowling.AllStanding()
	for i, p := range r.Pins {
		if i < len(pins) && p == bowling.PinKnocked {
			pins[i] = bowling.PinKnocked
		}
	}
	return pins
}
