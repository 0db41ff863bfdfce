package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
)

// model input size expected by the scorer
const (
	inputWidth  = 160
	inputHeight = 160
)

// Remote calls an HTTP model server to classify images. Uploads are decoded
// and resized to the model's input size before being sent, so the scorer
// never has to handle arbitrarily large originals.
type Remote struct {
	URL    string
	Client *http.Client
}

// NewRemote creates a Remote classifier for the given scorer endpoint.
func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Preprocess decodes the uploaded bytes and re-encodes them as a JPEG at the
// model's input size.
func Preprocess(imageBytes []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(img, inputWidth, inputHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

type scorerResponse struct {
	ClassName  string      `json:"class_name"`
	Confidence json.Number `json:"confidence"`
	Error      string      `json:"error"`
}

// Classify sends the preprocessed image to the scorer and validates its answer
// against the closed label set.
func (rc *Remote) Classify(ctx context.Context, imageBytes []byte) (Prediction, error) {
	prepared, err := Preprocess(imageBytes)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to build scorer request: %v", ErrClassificationFailed, err)
	}
	if _, err := part.Write(prepared); err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to build scorer request: %v", ErrClassificationFailed, err)
	}
	if err := writer.Close(); err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to build scorer request: %v", ErrClassificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.URL, &body)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := rc.Client.Do(req)
	if err != nil {
		log.Printf("classifier: scorer request to %s failed: %v", rc.URL, err)
		return Prediction{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to read scorer response: %v", ErrClassificationFailed, err)
	}

	var parsed scorerResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Prediction{}, fmt.Errorf("%w: malformed scorer response: %v", ErrClassificationFailed, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		log.Printf("classifier: scorer returned status %d, error %q", resp.StatusCode, parsed.Error)
		return Prediction{}, fmt.Errorf("%w: scorer status %d: %s", ErrClassificationFailed, resp.StatusCode, parsed.Error)
	}

	if !IsValidLabel(parsed.ClassName) {
		return Prediction{}, fmt.Errorf("%w: scorer returned unknown class %q", ErrClassificationFailed, parsed.ClassName)
	}

	confidence, err := decimal.NewFromString(parsed.Confidence.String())
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: scorer returned unparseable confidence %q", ErrClassificationFailed, parsed.Confidence)
	}

	return Prediction{Class: parsed.ClassName, Confidence: confidence}, nil
}

// ensure Remote satisfies the interface
var _ Classifier = (*Remote)(nil)
