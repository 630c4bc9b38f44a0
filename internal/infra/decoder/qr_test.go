//go:build !integration

package decoder

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// matrixImage renders a gozxing bit matrix as a black-and-white image so the
// tests can feed the decoder a real encoded QR code.
type matrixImage struct{ m *gozxing.BitMatrix }

func (b matrixImage) ColorModel() color.Model { return color.GrayModel }
func (b matrixImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.m.GetWidth(), b.m.GetHeight())
}
func (b matrixImage) At(x, y int) color.Color {
	if b.m.Get(x, y) {
		return color.Black
	}
	return color.White
}

func encodeQRPNG(t *testing.T, content string) []byte {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(content, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, matrixImage{m: matrix}); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeQR_RoundTrip(t *testing.T) {
	const payload = "0b5b62bb-17f2-4f6a-a076-6e934e5425ad"
	data := encodeQRPNG(t, payload)

	texts := decodeQR(data)
	if len(texts) != 1 {
		t.Fatalf("expected 1 payload, got %v", texts)
	}
	if texts[0] != payload {
		t.Fatalf("got %q, want %q", texts[0], payload)
	}
}

func TestDecodeQR_NotAnImage(t *testing.T) {
	if texts := decodeQR([]byte("definitely not a jpeg")); texts != nil {
		t.Fatalf("expected nil for garbage bytes, got %v", texts)
	}
	if texts := decodeQR(nil); texts != nil {
		t.Fatalf("expected nil for empty input, got %v", texts)
	}
}

func TestDecodeQR_ImageWithoutCode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	if texts := decodeQR(buf.Bytes()); texts != nil {
		t.Fatalf("expected nil for blank image, got %v", texts)
	}
}
