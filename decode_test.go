package pdf2html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractImageRGB(t *testing.T) {
	reader := openFixture(t, imagePDF(t))
	img, err := extractImage(reader.Page(1), "Im1")
	require.NoError(t, err)

	bounds := img.Bounds()
	require.Equal(t, 2, bounds.Dx())
	require.Equal(t, 2, bounds.Dy())

	want := [][4]uint32{
		{0xffff, 0, 0, 0xffff},
		{0, 0xffff, 0, 0xffff},
		{0, 0, 0xffff, 0xffff},
		{0xffff, 0xffff, 0xffff, 0xffff},
	}
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			assert.Equal(t, want[i][0], r, "pixel %d red", i)
			assert.Equal(t, want[i][1], g, "pixel %d green", i)
			assert.Equal(t, want[i][2], b, "pixel %d blue", i)
			assert.Equal(t, want[i][3], a, "pixel %d alpha", i)
			i++
		}
	}
}

func TestExtractImageUnknownName(t *testing.T) {
	reader := openFixture(t, imagePDF(t))
	_, err := extractImage(reader.Page(1), "Im9")
	assert.Error(t, err)
}

func TestExtractImageRejectsFont(t *testing.T) {
	reader := openFixture(t, helloPDF())
	_, err := extractImage(reader.Page(1), "F1")
	assert.Error(t, err)
}
