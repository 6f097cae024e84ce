package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
)

func TestPostPredictionSendsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"extracted":["cough"],"symptoms":[1],"predicted_disease":"Common Cold","confidence":0.8}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/predict", srv.URL+"/recognize_image")
	form := types.SymptomForm{Description: "cough", Age: types.ParseAge("30"), Gender: types.ParseGender("male")}
	raw, err := c.PostPrediction(context.Background(), form.Payload())
	require.NoError(t, err)
	assert.Equal(t, 200, raw.StatusCode)

	assert.Equal(t, "cough", got["text"])
	assert.Equal(t, float64(30), got["age"])
	assert.Equal(t, "male", got["gender"])
	assert.Contains(t, got, "weight")
	assert.Nil(t, got["weight"])
	assert.Nil(t, got["height"])
	assert.NotContains(t, got, "notes")
}

func TestPostImageSendsMultipart(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recognize_image", r.URL.Path)
		f, hdr, err := r.FormFile(ImageField)
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, data, b)
		assert.Equal(t, "pill.jpg", hdr.Filename)
		assert.Equal(t, "image/jpeg", hdr.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"prediction":"Decolgen","confidence":0.77}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/predict", srv.URL+"/recognize_image")
	raw, err := c.PostImage(context.Background(), types.Image{Name: "pill.jpg", Data: data})
	require.NoError(t, err)
	assert.Equal(t, `{"prediction":"Decolgen","confidence":0.77}`, string(raw.Body))
}

func TestNon2xxIsReturnedNotFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL)
	raw, err := c.PostPrediction(context.Background(), types.PredictPayload{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, 500, raw.StatusCode)
	assert.False(t, raw.OK())
}

func TestTextFlowOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := flow.NewTextFlow(New(srv.URL, srv.URL))
	f.Form.Description = "headache"
	task, _ := f.Submit(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := task.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, flow.Failed, st.Phase)
	assert.Equal(t, "Server returned 500: Internal error", st.Message())
}

func TestImageFlowOverHTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := flow.NewImageFlow(New(srv.URL, srv.URL), flow.WithTimeout(50*time.Millisecond))
	f.Select(&types.Image{Name: "a.png", Data: []byte("png")})
	task, _ := f.Submit(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := task.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, flow.Failed, st.Phase)
	assert.Equal(t, flow.KindTimedOut, flow.KindOf(st.Err))
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := flow.NewTextFlow(New(url, url))
	f.Form.Description = "cough"
	task, _ := f.Submit(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := task.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, flow.Failed, st.Phase)
	assert.Equal(t, flow.KindTransport, flow.KindOf(st.Err))
	assert.NotEmpty(t, st.Message())
}
