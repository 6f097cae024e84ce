package flow

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"medassist/api/internal/flow/types"
)

// InterpretPrediction turns an answer of the prediction endpoint into a view or a flow error.
// Non-2xx bodies are plain text.
func InterpretPrediction(raw *types.RawResponse) (types.PredictionView, error) {
	if raw == nil {
		return types.PredictionView{}, malformed("empty response", nil)
	}
	if !raw.OK() {
		return types.PredictionView{}, statusFailure(raw.StatusCode, strings.TrimSpace(string(raw.Body)))
	}

	var r types.PredictResponse
	if err := json.Unmarshal(raw.Body, &r); err != nil {
		return types.PredictionView{}, malformed(err.Error(), err)
	}
	switch {
	case r.Extracted == nil:
		return types.PredictionView{}, malformed(`missing "extracted"`, nil)
	case r.PredictedDisease == nil:
		return types.PredictionView{}, malformed(`missing "predicted_disease"`, nil)
	case r.Confidence == nil:
		return types.PredictionView{}, malformed(`missing "confidence"`, nil)
	}
	if err := checkConfidence(*r.Confidence); err != nil {
		return types.PredictionView{}, err
	}

	label := *r.PredictedDisease
	return types.PredictionView{
		Extracted:      append([]string(nil), (*r.Extracted)...),
		Disease:        label,
		Slug:           Slug(label),
		Path:           DiseasePath(label),
		Confidence:     *r.Confidence,
		ConfidenceText: FormatPercent(*r.Confidence, TextPrecision),
	}, nil
}

// InterpretRecognition does the same for the recognition endpoint, whose error bodies are
// JSON objects with an "error" field.
func InterpretRecognition(raw *types.RawResponse) (types.RecognitionView, error) {
	if raw == nil {
		return types.RecognitionView{}, malformed("empty response", nil)
	}
	if !raw.OK() {
		return types.RecognitionView{}, recognitionFailure(raw)
	}

	var r types.RecognizeResponse
	if err := json.Unmarshal(raw.Body, &r); err != nil {
		return types.RecognitionView{}, malformed(err.Error(), err)
	}
	switch {
	case r.Prediction == nil:
		return types.RecognitionView{}, malformed(`missing "prediction"`, nil)
	case r.Confidence == nil:
		return types.RecognitionView{}, malformed(`missing "confidence"`, nil)
	}
	if err := checkConfidence(*r.Confidence); err != nil {
		return types.RecognitionView{}, err
	}

	label := *r.Prediction
	return types.RecognitionView{
		Medicine:       label,
		Slug:           Slug(label),
		Path:           MedicinePath(label),
		Confidence:     *r.Confidence,
		ConfidenceText: FormatPercent(*r.Confidence, ImagePrecision),
	}, nil
}

// recognitionFailure shows the server's own "error" text (or a plain-text body) without the status.
func recognitionFailure(raw *types.RawResponse) *Error {
	var (
		eb     types.ErrorBody
		detail string
	)
	if err := json.Unmarshal(raw.Body, &eb); err == nil {
		detail = strings.TrimSpace(eb.Error)
	} else {
		detail = strings.TrimSpace(string(raw.Body))
	}
	if detail == "" {
		return statusFailure(raw.StatusCode, "")
	}
	return &Error{Kind: KindTransport, StatusCode: raw.StatusCode, Msg: detail}
}

func checkConfidence(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c > 1 {
		return malformed(fmt.Sprintf("confidence %v is outside [0, 1]", c), nil)
	}
	return nil
}
