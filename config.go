package pdf2html

import (
	"github.com/go-playground/validator/v10"

	"github.com/dangen-master/pdf2html/logger"
)

// ImageMode selects how embedded images are turned into bitmaps.
type ImageMode string

const (
	// ImageModeAuto clips images that carry a mask or a CMYK/ICC
	// colorspace and extracts everything else.
	ImageModeAuto ImageMode = "auto"
	// ImageModeExtract always decodes the image's stored pixel data.
	ImageModeExtract ImageMode = "extract"
	// ImageModeClip always rasterizes the image's region of the page.
	ImageModeClip ImageMode = "clip"
)

// Options configures a Renderer.
type Options struct {
	// Scale maps point-space to CSS pixels. The default 96/72 renders
	// at the conventional CSS pixel density.
	Scale float64 `validate:"gt=0"`
	// ImageMode selects the extract/clip policy per image.
	ImageMode ImageMode `validate:"oneof=auto extract clip"`
	// ClipOversample is the rasterization factor for clipped regions.
	// Oversampling keeps clipped bitmaps sharp when the browser scales
	// them down to their CSS box.
	ClipOversample float64 `validate:"gt=0,lte=8"`
	// MaxConcurrentRenders bounds documents rendered at the same time.
	MaxConcurrentRenders int `validate:"min=1,max=16"`
	// Logger receives structured events at defined extension points:
	// document open, per-page start, per-image decision, per-image
	// fallback and drop, and write promotion.
	Logger logger.LogFunc
}

// NewDefaultOptions returns the renderer defaults.
func NewDefaultOptions() *Options {
	return &Options{
		Scale:                96.0 / 72.0,
		ImageMode:            ImageModeAuto,
		ClipOversample:       2.0,
		MaxConcurrentRenders: 4,
	}
}

func (o *Options) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}
