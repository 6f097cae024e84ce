package inference

import (
	"fmt"

	"medassist/api/internal/config"
	"medassist/api/internal/inference/gemini"
)

// FromConfig registers the HTTP engine and, when a key is set, the Gemini one.
// cfg.Engine picks the default.
func FromConfig(cfg *config.Config) (*Engines, error) {
	httpEng := New(cfg.PredictURL, cfg.RecognizeURL)

	var gem Engine
	if cfg.GeminiAPIKey != "" {
		gem = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	switch cfg.Engine {
	case "", config.EngineHTTP:
		return NewEngines(httpEng, gem), nil
	case config.EngineGemini:
		if gem == nil {
			return nil, fmt.Errorf("engine %q needs GEMINI_API_KEY", cfg.Engine)
		}
		return NewEngines(gem, httpEng), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
