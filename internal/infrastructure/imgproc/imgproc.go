// Package imgproc реализует локальную обработку изображений: пережатие
// крупных файлов в JPEG и выборку базового цвета вещи.
package imgproc

import (
	"bytes"
	"context"
	"fmt"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/disintegration/imaging"

	// Регистрирует webp-декодер в image.Decode.
	_ "golang.org/x/image/webp"
)

type Processor struct {
	cfg    *cfg.IngestCfg
	logger logger.Logger
}

func NewProcessor(cfg *cfg.IngestCfg, logger logger.Logger) *Processor {
	return &Processor{
		cfg:    cfg,
		logger: logger,
	}
}

// Compress пережимает изображение в JPEG с ограничением длинной стороны.
// Файлы не крупнее порога и форматы без Go-декодера (HEIC/HEIF) проходят
// без изменений: сервис хранения принимает их как есть.
func (p *Processor) Compress(ctx context.Context, req *usecase.CompressReq) (*usecase.CompressRes, error) {
	const op = "Processor.Compress"

	passthrough := &usecase.CompressRes{
		Data:       req.Data,
		MimeType:   req.MimeType,
		Compressed: false,
	}

	if int64(len(req.Data)) <= p.cfg.CompressThreshold {
		return passthrough, nil
	}

	if req.MimeType == "image/heic" || req.MimeType == "image/heif" {
		return passthrough, nil
	}

	src, err := imaging.Decode(bytes.NewReader(req.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Fit уменьшает картинку до рамки, сохраняя пропорции; мелкие не трогает.
	fitted := imaging.Fit(src, p.cfg.MaxDimensionPx, p.cfg.MaxDimensionPx, imaging.Lanczos)

	var buf bytes.Buffer
	err = imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(p.cfg.JpegQuality))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	bounds := fitted.Bounds()

	return &usecase.CompressRes{
		Data:       buf.Bytes(),
		MimeType:   "image/jpeg",
		Compressed: true,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}

// SampleColor возвращает hex-цвет центрального пикселя изображения.
func (p *Processor) SampleColor(ctx context.Context, data []byte) (string, error) {
	const op = "Processor.SampleColor"

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", e.Wrap(op, err)
	}

	bounds := img.Bounds()
	cx := bounds.Min.X + bounds.Dx()/2
	cy := bounds.Min.Y + bounds.Dy()/2

	r, g, b, _ := img.At(cx, cy).RGBA()

	return fmt.Sprintf("#%02X%02X%02X", uint8(r>>8), uint8(g>>8), uint8(b>>8)), nil
}
