package scoreboard

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/lanekit/lanekeeper/internal/bowling"
)

func TestRenderPNGProducesDecodableImage(t *testing.T) {
	s := bowling.NewSession(bowling.ModeOpen, "")
	roll(t, s, 0, 0, allPins()...)
	roll(t, s, 1, 0, 1, 2, 3, 4, 5)

	r := NewRenderer()
	raw, err := r.RenderPNG(context.Background(), s, "Ada", CurrentStance(s))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Empty() {
		t.Fatalf("empty image")
	}
}

func TestRenderPNGNilSession(t *testing.T) {
	r := NewRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, "Ada", nil); err == nil {
		t.Fatalf("nil session must error")
	}
}

func TestRenderPNGCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRenderer()
	if _, err := r.RenderPNG(ctx, bowling.NewSession(bowling.ModeOpen, ""), "Ada", nil); err == nil {
		t.Fatalf("cancelled context must error")
	}
}

func TestPinImageCached(t *testing.T) {
	r := NewRenderer()
	a, err := r.pinImage(34)
	if err != nil {
		t.Fatalf("pinImage: %v", err)
	}
	b, err := r.pinImage(34)
	if err != nil {
		t.Fatalf("pinImage: %v", err)
	}
	if a != b {
		t.Fatalf("same size must hit the cache")
	}
}
