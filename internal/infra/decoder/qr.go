package decoder

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var decodeHints = map[gozxing.DecodeHintType]interface{}{
	gozxing.DecodeHintType_TRY_HARDER: true,
}

// decodeQR extracts QR payloads from raw JPEG/PNG bytes. Any failure along the
// way (undecodable image, no code found, detector error) yields an empty
// result; decode failures are a workflow outcome, not an error.
func decodeQR(data []byte) []string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, decodeHints)
	if err != nil || result == nil {
		return nil
	}
	text := result.GetText()
	if text == "" {
		return nil
	}
	return []string{text}
}
