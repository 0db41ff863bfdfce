package classifier

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessResizesToModelInput(t *testing.T) {
	prepared, err := Preprocess(testImageBytes(t, 640, 480))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(prepared))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, inputWidth, bounds.Dx())
	assert.Equal(t, inputHeight, bounds.Dy())
}

func TestPreprocessRejectsNonImages(t *testing.T) {
	_, err := Preprocess([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestClassifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		file.Close()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"class_name":"Plastic","confidence":0.77}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, 5*time.Second)

	prediction, err := remote.Classify(context.Background(), testImageBytes(t, 320, 240))
	require.NoError(t, err)

	assert.Equal(t, "Plastic", prediction.Class)
	assert.True(t, prediction.Confidence.Equal(decimal.RequireFromString("0.77")))
}

func TestClassifyScorerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, 5*time.Second)

	_, err := remote.Classify(context.Background(), testImageBytes(t, 64, 64))
	assert.ErrorIs(t, err, ErrClassificationFailed)
}

func TestClassifyRejectsUnknownClass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"class_name":"Adamantium","confidence":0.99}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, 5*time.Second)

	_, err := remote.Classify(context.Background(), testImageBytes(t, 64, 64))
	assert.ErrorIs(t, err, ErrClassificationFailed)
}

func TestClassifyUndecodableUpload(t *testing.T) {
	remote := NewRemote("http://localhost:0", time.Second)

	_, err := remote.Classify(context.Background(), []byte("not an image"))
	assert.ErrorIs(t, err, ErrClassificationFailed)
}
