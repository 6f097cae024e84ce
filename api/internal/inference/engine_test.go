package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/config"
	"medassist/api/internal/inference/gemini"
)

func TestEngines(t *testing.T) {
	httpEng := New("", "")
	gem := gemini.New("key", "gemini-2.5-flash")
	engs := NewEngines(httpEng, nil, gem)

	assert.Equal(t, []string{"gemini", "http"}, engs.Names())
	assert.Same(t, httpEng, engs.Default())

	e, err := engs.GetEngine(" Gemini ")
	require.NoError(t, err)
	assert.Same(t, gem, e)

	e, err = engs.GetEngine("")
	require.NoError(t, err)
	assert.Same(t, httpEng, e)

	_, err = engs.GetEngine("yandex")
	assert.ErrorContains(t, err, "gemini | http")
}

func TestManager(t *testing.T) {
	httpEng := New("", "")
	gem := gemini.New("key", "m")
	m := NewManager(httpEng)

	assert.Same(t, httpEng, m.Get(1))
	m.Set(1, gem)
	assert.Same(t, gem, m.Get(1))
	assert.Same(t, httpEng, m.Get(2))
}

func TestNewDefaults(t *testing.T) {
	c := New(" ", "")
	assert.Equal(t, DefaultPredictURL, c.PredictURL)
	assert.Equal(t, DefaultRecognizeURL, c.RecognizeURL)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	engs, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"http"}, engs.Names())
	assert.Equal(t, "http", engs.Default().Name())

	cfg.GeminiAPIKey = "key"
	engs, err = FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "http"}, engs.Names())
	assert.Equal(t, "http", engs.Default().Name())

	cfg.Engine = config.EngineGemini
	engs, err = FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", engs.Default().Name())

	cfg.GeminiAPIKey = ""
	_, err = FromConfig(cfg)
	assert.Error(t, err)
}
