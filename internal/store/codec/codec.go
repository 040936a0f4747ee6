// Package codec adapts the standard JPEG decoder and x/image's resampler
// to the two things the store needs from an image body: its pixel
// dimensions, and a fit-to-height render at a target size.
package codec

import (
	"bytes"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Dimensions decodes just enough of blob to report its pixel size, without
// holding a full decoded image in memory longer than necessary.
func Dimensions(blob []byte) (width, height uint32, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(blob))
	if err != nil {
		return 0, 0, err
	}
	return uint32(cfg.Width), uint32(cfg.Height), nil
}

// FitToHeight decodes blob and renders it to fit within a targetWidth x
// targetHeight bounding box, preserving aspect ratio by scaling to height
// and then clamping width, mirroring the original store's
// vips_thumbnail_image(..., "height", targetHeight) bounding-box resize.
func FitToHeight(blob []byte, targetWidth, targetHeight uint16) ([]byte, error) {
	src, err := jpeg.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}

	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcH == 0 {
		srcH = 1
	}
	dstH := int(targetHeight)
	if dstH <= 0 {
		dstH = 1
	}
	dstW := srcW * dstH / srcH
	if dstW <= 0 {
		dstW = 1
	}
	if maxW := int(targetWidth); maxW > 0 && dstW > maxW {
		dstW = maxW
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
