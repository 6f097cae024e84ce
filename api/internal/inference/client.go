package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"medassist/api/internal/flow/types"
)

const (
	DefaultPredictURL   = "http://localhost:5000/predict"
	DefaultRecognizeURL = "http://localhost:5000/recognize_image"

	// ImageField is the multipart field the recognition endpoint reads.
	ImageField = "image"

	maxResponseBytes = 4 << 20
)

// Client talks to the inference service over plain HTTP. It never retries and has no
// timeout of its own: the caller's context bounds each request.
type Client struct {
	PredictURL   string
	RecognizeURL string
	httpc        *http.Client
}

func New(predictURL, recognizeURL string) *Client {
	if strings.TrimSpace(predictURL) == "" {
		predictURL = DefaultPredictURL
	}
	if strings.TrimSpace(recognizeURL) == "" {
		recognizeURL = DefaultRecognizeURL
	}
	return &Client{
		PredictURL:   predictURL,
		RecognizeURL: recognizeURL,
		httpc:        &http.Client{},
	}
}

func (c *Client) Name() string { return "http" }

func (c *Client) PostPrediction(ctx context.Context, payload types.PredictPayload) (*types.RawResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode prediction payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.PredictURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) PostImage(ctx context.Context, img types.Image) (*types.RawResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := img.Name
	if name == "" {
		name = "image"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     ImageField,
		"filename": name,
	}))
	h.Set("Content-Type", img.ContentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RecognizeURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*types.RawResponse, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response (status %d): %w", resp.StatusCode, err)
	}
	return &types.RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        b,
	}, nil
}
