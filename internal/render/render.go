// Package render рисует иконку состояния загрузки.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"recfetch/internal/model"
)

const ContentType = "image/png"

var (
	Neutral = color.RGBA{0x00, 0x00, 0x00, 0xff}
	Alert   = color.RGBA{0xff, 0x00, 0x00, 0xff}
	White   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Element - то, что нужно нарисовать: текст по центру на однотонном фоне.
type Element struct {
	Background color.RGBA
	Foreground color.RGBA
	Text       string
}

// IconFor выбирает иконку для состояния. Ошибка важнее активной загрузки.
func IconFor(snap model.Snapshot) Element {
	switch {
	case snap.HasError:
		return Element{Background: Alert, Foreground: White, Text: "ERR"}
	case snap.Running:
		return Element{Background: Neutral, Foreground: White, Text: fmt.Sprintf("%.1f%%", snap.Percentage)}
	default:
		return Element{Background: Neutral, Foreground: White, Text: "-"}
	}
}

type Config struct {
	Size     int     // сторона квадратной иконки в пикселях
	FontPath string  // TTF/OTF, пусто - Go Regular
	FontSize float64 // в пикселях
}

type Renderer struct {
	size int
	mu   sync.Mutex // font.Face не безопасен для параллельного использования
	face font.Face
}

// New загружает шрифт. Ошибка загрузки шрифта оборачивает model.ErrRender.
func New(cfg Config) (*Renderer, error) {
	data := goregular.TTF
	if cfg.FontPath != "" {
		var err error
		data, err = os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read font failed: %w", model.ErrRender, err)
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font failed: %w", model.ErrRender, err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    cfg.FontSize,
		DPI:     72, // 1pt = 1px
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create font face failed: %w", model.ErrRender, err)
	}

	return &Renderer{
		size: cfg.Size,
		face: face,
	}, nil
}

func (r *Renderer) Render(snap model.Snapshot) ([]byte, error) {
	return r.Rasterize(IconFor(snap))
}

// Rasterize рисует элемент и кодирует его в PNG. Результат детерминирован.
func (r *Renderer) Rasterize(el Element) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	draw.Draw(img, img.Bounds(), &image.Uniform{el.Background}, image.Point{}, draw.Src)

	r.mu.Lock()
	r.drawCentered(img, el.Text, el.Foreground)
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png failed: %w", model.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawCentered(img draw.Image, text string, fg color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{fg},
		Face: r.face,
	}

	size := fixed.I(r.size)
	m := r.face.Metrics()
	d.Dot = fixed.Point26_6{
		X: (size - d.MeasureString(text)) / 2,
		Y: (size + m.Ascent - m.Descent) / 2,
	}
	d.DrawString(text)
}
