package imgproc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompressPassthroughSmall тестирует, что файлы не крупнее порога проходят без изменений.
func TestCompressPassthroughSmall(t *testing.T) {
	p := newTestProcessor(1<<20, 2048)

	data := encodeImage(t, newTestImage(50, 50, color.NRGBA{R: 200, G: 10, B: 10, A: 255}), imaging.PNG)

	res, err := p.Compress(context.Background(), &usecase.CompressReq{Data: data, MimeType: "image/png"})
	require.NoError(t, err)

	assert.False(t, res.Compressed)
	assert.Equal(t, data, res.Data)
	assert.Equal(t, "image/png", res.MimeType)
}

// TestCompressPassthroughHeic тестирует, что HEIC/HEIF не пережимаются даже над порогом:
// для них нет Go-декодера, хранилище принимает их как есть.
func TestCompressPassthroughHeic(t *testing.T) {
	p := newTestProcessor(16, 2048)

	data := bytes.Repeat([]byte{0xAB}, 64)

	for _, mime := range []string{"image/heic", "image/heif"} {
		res, err := p.Compress(context.Background(), &usecase.CompressReq{Data: data, MimeType: mime})
		require.NoError(t, err)

		assert.False(t, res.Compressed)
		assert.Equal(t, data, res.Data)
		assert.Equal(t, mime, res.MimeType)
	}
}

// TestCompressResize тестирует пережатие крупного файла: длинная сторона
// ограничивается рамкой, пропорции сохраняются, на выходе JPEG.
func TestCompressResize(t *testing.T) {
	p := newTestProcessor(1, 100)

	data := encodeImage(t, newTestImage(300, 150, color.NRGBA{R: 30, G: 90, B: 30, A: 255}), imaging.JPEG)

	res, err := p.Compress(context.Background(), &usecase.CompressReq{Data: data, MimeType: "image/jpeg"})
	require.NoError(t, err)

	assert.True(t, res.Compressed)
	assert.Equal(t, "image/jpeg", res.MimeType)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)

	// Результат декодируется и совпадает по размерам с заявленными
	out, err := imaging.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

// TestCompressNoUpscale тестирует, что мелкие изображения не растягиваются до рамки.
func TestCompressNoUpscale(t *testing.T) {
	p := newTestProcessor(1, 2048)

	data := encodeImage(t, newTestImage(40, 20, color.NRGBA{R: 10, G: 10, B: 120, A: 255}), imaging.PNG)

	res, err := p.Compress(context.Background(), &usecase.CompressReq{Data: data, MimeType: "image/png"})
	require.NoError(t, err)

	assert.True(t, res.Compressed)
	assert.Equal(t, "image/jpeg", res.MimeType)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 20, res.Height)
}

// TestCompressInvalidData тестирует ошибку на некорректных байтах над порогом.
func TestCompressInvalidData(t *testing.T) {
	p := newTestProcessor(4, 2048)

	_, err := p.Compress(context.Background(), &usecase.CompressReq{
		Data:     []byte("definitely not an image at all"),
		MimeType: "image/jpeg",
	})
	assert.Error(t, err)
}

// TestSampleColor тестирует выборку цвета центрального пикселя однотонного изображения.
func TestSampleColor(t *testing.T) {
	tests := []struct {
		name string
		fill color.NRGBA
		want string
	}{
		{name: "red", fill: color.NRGBA{R: 255, A: 255}, want: "#FF0000"},
		{name: "teal", fill: color.NRGBA{G: 128, B: 128, A: 255}, want: "#008080"},
		{name: "white", fill: color.NRGBA{R: 255, G: 255, B: 255, A: 255}, want: "#FFFFFF"},
	}

	p := newTestProcessor(1<<20, 2048)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// PNG без потерь, поэтому цвет совпадает точно
			data := encodeImage(t, newTestImage(9, 9, tt.fill), imaging.PNG)

			got, err := p.SampleColor(context.Background(), data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSampleColorCenterPixel тестирует, что берётся именно центральный пиксель.
func TestSampleColorCenterPixel(t *testing.T) {
	p := newTestProcessor(1<<20, 2048)

	img := newTestImage(11, 11, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(5, 5, color.NRGBA{R: 0x20, G: 0x40, B: 0x60, A: 255})

	got, err := p.SampleColor(context.Background(), encodeImage(t, img, imaging.PNG))
	require.NoError(t, err)
	assert.Equal(t, "#204060", got)
}

// TestSampleColorInvalidData тестирует ошибку на недекодируемых байтах.
func TestSampleColorInvalidData(t *testing.T) {
	p := newTestProcessor(1<<20, 2048)

	got, err := p.SampleColor(context.Background(), []byte("not an image"))
	assert.Error(t, err)
	assert.Empty(t, got)
}

// newTestProcessor собирает процессор с заданным порогом пережатия и рамкой.
func newTestProcessor(threshold int64, maxDim int) *Processor {
	return NewProcessor(&cfg.IngestCfg{
		CompressThreshold: threshold,
		MaxDimensionPx:    maxDim,
		JpegQuality:       85,
	}, logger.NopLogger{})
}

// newTestImage создаёт однотонное изображение заданного размера.
func newTestImage(width, height int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}

	return img
}

// encodeImage кодирует изображение в память в указанном формате.
func encodeImage(t *testing.T, img image.Image, format imaging.Format) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))

	return buf.Bytes()
}
