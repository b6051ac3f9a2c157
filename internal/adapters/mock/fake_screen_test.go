package mock

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/quentinrf/darkwatt/internal/ports"
)

func TestFakeScreen_Capture(t *testing.T) {
	screen := NewFakeScreen(8, 4, 250, 20)

	for i := 0; i < 20; i++ {
		payload, err := screen.Capture(context.Background())
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if err := payload.Validate(ports.MIMETypePNG); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}

		img, err := png.Decode(bytes.NewReader(payload.Data))
		if err != nil {
			t.Fatalf("png.Decode failed: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
			t.Errorf("got %dx%d frame, want 8x4", b.Dx(), b.Dy())
		}
		r, _, _, _ := img.At(0, 0).RGBA()
		if level := r >> 8; level < 230 {
			t.Errorf("grey level %d outside 230-255", level)
		}
	}
}

func TestFakeScreen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFakeScreen(1, 1, 0, 0).Capture(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}
