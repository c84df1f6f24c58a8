package imageset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type CompressOptions struct {
	// MaxDimension bounds the longer side in pixels.
	MaxDimension int
	// MaxBytes is the target encoded size.
	MaxBytes int
	// MaxPixels bounds width*height of a source image that will be decoded.
	MaxPixels int
}

var DefaultCompressOptions = CompressOptions{
	MaxDimension: 800,
	MaxBytes:     1 << 20,
	MaxPixels:    40_000_000,
}

var (
	ErrEmptyImage    = errors.New("empty image data")
	ErrTooManyPixels = errors.New("image dimensions too large to decode")
)

const (
	startQuality = 85
	minQuality   = 35
	qualityStep  = 10
)

// Compress downsizes an image to fit MaxDimension and re-encodes it as JPEG,
// lowering quality until it fits MaxBytes or the quality floor is reached.
// Images already within both bounds are returned untouched with reencoded
// false. Sources above MaxPixels fail with ErrTooManyPixels before decoding.
func Compress(data []byte, opts CompressOptions) (out []byte, reencoded bool, err error) {
	if len(data) == 0 {
		return nil, false, ErrEmptyImage
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultCompressOptions.MaxDimension
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultCompressOptions.MaxBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultCompressOptions.MaxPixels
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	if len(data) <= opts.MaxBytes && cfg.Width <= opts.MaxDimension && cfg.Height <= opts.MaxDimension {
		return data, false, nil
	}
	// The header is all that has been read so far; a full decode allocates
	// width*height*4 bytes or more.
	if int64(cfg.Width)*int64(cfg.Height) > int64(opts.MaxPixels) {
		return nil, false, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	dst := flatten(src, opts.MaxDimension)

	var best []byte
	for q := startQuality; q >= minQuality; q -= qualityStep {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
			return nil, false, err
		}
		best = buf.Bytes()
		if len(best) <= opts.MaxBytes {
			break
		}
	}
	return best, true, nil
}

// flatten scales src so its longer side is at most maxDim and paints it over
// white, since JPEG has no alpha channel.
func flatten(src image.Image, maxDim int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
