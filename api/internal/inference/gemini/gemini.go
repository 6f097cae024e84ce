package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"medassist/api/internal/flow/types"
	"medassist/api/internal/util"
)

const predictInstruction = `You are the disease prediction service of a health information site.
The user describes symptoms in free text and may add age, gender, weight (kg) and height (cm).
1) Extract the distinct symptoms mentioned, as short lowercase phrases, in the order they appear.
2) Name the single most likely disease using its common English name.
3) Give your confidence as a number between 0 and 1.
Return STRICT JSON only:
{"extracted": [string], "symptoms": [], "predicted_disease": string, "confidence": number}`

const recognizeInstruction = `You are the medicine recognition service of a health information site.
The image shows a medicine package, blister or tablet. Identify the brand name of the medicine.
Return STRICT JSON only:
{"prediction": string, "confidence": number}
confidence is between 0 and 1. If nothing can be recognized return {"error": "reason"}.`

// Engine answers the same contracts as the HTTP inference service, backed by Gemini.
// Model is shared by all chats and may be switched while requests are running.
type Engine struct {
	APIKey string

	mu    sync.RWMutex
	model string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) GetModel() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

func (e *Engine) SetModel(model string) {
	if m := strings.TrimSpace(model); m != "" {
		e.mu.Lock()
		e.model = m
		e.mu.Unlock()
	}
}

func (e *Engine) PostPrediction(ctx context.Context, payload types.PredictPayload) (*types.RawResponse, error) {
	user, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini predict: encode payload: %w", err)
	}
	txt, err := e.generate(ctx, predictInstruction, genai.Text(string(user)))
	if err != nil {
		if raw := statusResponse(err, false); raw != nil {
			return raw, nil
		}
		return nil, fmt.Errorf("gemini predict: %w", err)
	}
	return jsonResponse(txt), nil
}

func (e *Engine) PostImage(ctx context.Context, img types.Image) (*types.RawResponse, error) {
	blob := genai.Blob{MIMEType: img.ContentType(), Data: img.Data}
	txt, err := e.generate(ctx, recognizeInstruction, genai.Text("Identify this medicine."), blob)
	if err != nil {
		if raw := statusResponse(err, true); raw != nil {
			return raw, nil
		}
		return nil, fmt.Errorf("gemini recognize: %w", err)
	}

	// модель может вернуть {"error": ...}: отдаём его как 422, как сделал бы сервис
	var eb types.ErrorBody
	if json.Unmarshal([]byte(txt), &eb) == nil && eb.Error != "" {
		return &types.RawResponse{StatusCode: http.StatusUnprocessableEntity, ContentType: "application/json", Body: []byte(txt)}, nil
	}
	return jsonResponse(txt), nil
}

func (e *Engine) generate(ctx context.Context, system string, parts ...genai.Part) (string, error) {
	model := e.GetModel()
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return cleanJSON(firstText(resp)), nil
}

// cleanJSON снимает code fences; если вокруг JSON остался текст, берём первый объект.
func cleanJSON(txt string) string {
	s := util.StripCodeFences(txt)
	if json.Valid([]byte(s)) {
		return s
	}
	if obj := util.FirstJSONObject(s); obj != "" {
		return obj
	}
	return s
}

func jsonResponse(txt string) *types.RawResponse {
	return &types.RawResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(txt)}
}

// statusResponse turns an API error with an HTTP code into the error body the
// corresponding endpoint would have sent: plain text for prediction, JSON for recognition.
func statusResponse(err error, asJSON bool) *types.RawResponse {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code == 0 {
		return nil
	}
	msg := strings.TrimSpace(gerr.Message)
	if msg == "" {
		msg = http.StatusText(gerr.Code)
	}
	if !asJSON {
		return &types.RawResponse{StatusCode: gerr.Code, ContentType: "text/plain", Body: []byte(msg)}
	}
	b, _ := json.Marshal(types.ErrorBody{Error: msg})
	return &types.RawResponse{StatusCode: gerr.Code, ContentType: "application/json", Body: b}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
