package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestNormalize_PNGBecomesWebP(t *testing.T) {
	out, ct, ext, err := Normalize(pngBytes(t, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", ct)
	assert.Equal(t, ".webp", ext)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestNormalize_LargeImageIsDownscaled(t *testing.T) {
	out, _, _, err := Normalize(pngBytes(t, 4000, 1000))
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Width)
	assert.Equal(t, 500, cfg.Height)
}

func TestNormalize_PDFPassesThrough(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	out, ct, ext, err := Normalize(pdf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, ".pdf", ext)
	assert.Equal(t, pdf, out)
}

func TestNormalize_RejectsOtherTypes(t *testing.T) {
	_, _, _, err := Normalize([]byte("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, _, _, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	fp := &fakePutter{}
	store := &S3Store{client: fp, bucket: "reqs", baseURL: "http://minio:9000/reqs"}

	url, err := store.Put(context.Background(), "appointments/3/birth certificate.webp", "image/webp", []byte("abc"))
	require.NoError(t, err)

	assert.Equal(t, "http://minio:9000/reqs/appointments/3/birth%20certificate.webp", url)
	assert.Equal(t, "reqs", *fp.in.Bucket)
	assert.Equal(t, "image/webp", *fp.in.ContentType)
	assert.Equal(t, []byte("abc"), fp.body)
}

func TestNewS3Store_CustomEndpointUsesPathStyleURL(t *testing.T) {
	store := NewS3Store(S3Options{Bucket: "reqs", Region: "us-east-1", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/reqs/a.pdf", store.PublicURL("a.pdf"))
}
