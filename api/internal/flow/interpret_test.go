package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/flow/types"
)

func TestInterpretPrediction(t *testing.T) {
	v, err := InterpretPrediction(jsonOK(`{
		"extracted": ["anxiety", "rapid heartbeat"],
		"symptoms": [0, 1, 0, 1],
		"predicted_disease": "Acute Stress Reaction",
		"confidence": 0.9234
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"anxiety", "rapid heartbeat"}, v.Extracted)
	assert.Equal(t, "Acute Stress Reaction", v.Disease)
	assert.Equal(t, "acute-stress-reaction", v.Slug)
	assert.Equal(t, "/diseases/acute-stress-reaction", v.Path)
	assert.Equal(t, "92.3%", v.ConfidenceText)
}

func TestInterpretPredictionMalformed(t *testing.T) {
	tests := map[string]string{
		"missing confidence": `{"extracted": [], "symptoms": [], "predicted_disease": "Flu"}`,
		"missing disease":    `{"extracted": [], "confidence": 0.5}`,
		"missing extracted":  `{"predicted_disease": "Flu", "confidence": 0.5}`,
		"null confidence":    `{"extracted": [], "predicted_disease": "Flu", "confidence": null}`,
		"out of range":       `{"extracted": [], "predicted_disease": "Flu", "confidence": 3}`,
		"not json":           `<html>oops</html>`,
		"empty body":         ``,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := InterpretPrediction(jsonOK(body))
			require.Error(t, err)
			assert.Equal(t, KindMalformedResponse, KindOf(err))
			assert.NotContains(t, err.Error(), "NaN")
		})
	}
}

func TestInterpretPredictionStatus(t *testing.T) {
	_, err := InterpretPrediction(&types.RawResponse{StatusCode: 500, Body: []byte("Internal error")})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "Internal error")

	_, err = InterpretPrediction(&types.RawResponse{StatusCode: 502})
	require.Error(t, err)
	assert.Equal(t, "Server returned status code 502", err.Error())
}

func TestInterpretRecognition(t *testing.T) {
	v, err := InterpretRecognition(jsonOK(`{"prediction": "Decolgen Forte", "confidence": 0.9234}`))
	require.NoError(t, err)
	assert.Equal(t, "Decolgen Forte", v.Medicine)
	assert.Equal(t, "/medicines/decolgen-forte", v.Path)
	assert.Equal(t, "92.34%", v.ConfidenceText)

	v, err = InterpretRecognition(jsonOK(`{"prediction": "", "confidence": 0.1}`))
	require.NoError(t, err)
	assert.Equal(t, "", v.Slug)
}

func TestInterpretRecognitionFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  *types.RawResponse
		kind Kind
		want string
	}{
		{"json error", &types.RawResponse{StatusCode: 400, Body: []byte(`{"error": "No image uploaded"}`)}, KindTransport, "No image uploaded"},
		{"plain text", &types.RawResponse{StatusCode: 500, Body: []byte("Internal error")}, KindTransport, "Internal error"},
		{"json without error", &types.RawResponse{StatusCode: 503, Body: []byte(`{}`)}, KindTransport, "Server returned status code 503"},
		{"empty body", &types.RawResponse{StatusCode: 502}, KindTransport, "Server returned status code 502"},
		{"missing confidence", jsonOK(`{"prediction": "Decolgen"}`), KindMalformedResponse, `Malformed response from server: missing "confidence"`},
		{"missing prediction", jsonOK(`{"confidence": 0.3}`), KindMalformedResponse, `Malformed response from server: missing "prediction"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InterpretRecognition(tt.raw)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}

	_, err := InterpretRecognition(&types.RawResponse{StatusCode: 400, Body: []byte(`{"error": "bad image"}`)})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 400, fe.StatusCode)
}
