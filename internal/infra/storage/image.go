package storage

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
)

const (
	maxImageSide = 2000
	webpQuality  = 80
)

var ErrUnsupportedFile = httperr.ErrBusiness(domain.CodeUnsupportedFile)

var documentTypes = map[string]string{
	"application/pdf": ".pdf",
}

// Normalize prepares an uploaded requirement for storage. Photos are
// downscaled and re-encoded as WebP; PDFs pass through untouched.
// Returns the bytes to store, their content type and file extension.
func Normalize(data []byte) ([]byte, string, string, error) {
	if len(data) == 0 {
		return nil, "", "", ErrUnsupportedFile
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	if ext, ok := documentTypes[ct]; ok {
		return data, ct, ext, nil
	}

	var (
		img image.Image
		err error
	)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		img, _, err = image.Decode(bytes.NewReader(data))
	case strings.Contains(ct, "webp"):
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, "", "", ErrUnsupportedFile
	}
	if err != nil {
		return nil, "", "", ErrUnsupportedFile
	}

	img = downscale(img, maxImageSide)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, "", "", err
	}
	return buf.Bytes(), "image/webp", ".webp", nil
}

func downscale(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	scale := math.Min(float64(maxSide)/float64(w), float64(maxSide)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
