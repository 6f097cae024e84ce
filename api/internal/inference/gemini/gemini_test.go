package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"medassist/api/internal/flow/types"
)

func TestEmptyKey(t *testing.T) {
	e := New("", "gemini-2.5-flash")
	_, err := e.PostPrediction(context.Background(), types.PredictPayload{Text: "cough"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	_, err = e.PostImage(context.Background(), types.Image{Data: []byte{0xFF, 0xD8}})
	require.Error(t, err)
}

func TestStatusResponse(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 429, Message: "quota exceeded"})

	raw := statusResponse(err, false)
	require.NotNil(t, raw)
	assert.Equal(t, 429, raw.StatusCode)
	assert.Equal(t, "quota exceeded", string(raw.Body))

	raw = statusResponse(err, true)
	require.NotNil(t, raw)
	var eb types.ErrorBody
	require.NoError(t, json.Unmarshal(raw.Body, &eb))
	assert.Equal(t, "quota exceeded", eb.Error)

	assert.Nil(t, statusResponse(fmt.Errorf("dial failed"), true))
}

func TestFirstText(t *testing.T) {
	assert.Equal(t, "", firstText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"prediction":"Decolgen","confidence":0.8}`)}}},
	}}
	assert.Equal(t, `{"prediction":"Decolgen","confidence":0.8}`, firstText(resp))
}

func TestSetModel(t *testing.T) {
	e := New("k", "gemini-2.5-flash")
	e.SetModel("  ")
	assert.Equal(t, "gemini-2.5-flash", e.GetModel())
	e.SetModel("gemini-2.5-pro")
	assert.Equal(t, "gemini-2.5-pro", e.GetModel())
}

func TestSetModelWhileGenerating(t *testing.T) {
	e := New("", "gemini-2.5-flash")
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.SetModel("gemini-2.5-pro")
			e.SetModel("gemini-2.5-flash")
		}()
		go func() {
			defer wg.Done()
			_ = e.GetModel()
			_, _ = e.generate(context.Background(), predictInstruction, genai.Text("cough"))
		}()
	}
	wg.Wait()
	assert.Equal(t, "gemini-2.5-flash", e.GetModel())
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"prediction":"Decolgen","confidence":0.8}`,
		cleanJSON("```json\n{\"prediction\":\"Decolgen\",\"confidence\":0.8}\n```"))
	assert.Equal(t, `{"error":"not a medicine"}`,
		cleanJSON(`Here you go: {"error":"not a medicine"}`))
	assert.Equal(t, "nothing", cleanJSON("nothing"))
}
