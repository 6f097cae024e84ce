package types

// PredictResponse: 200-ответ /predict. Указатели отличают «нет поля» от нулевого значения.
type PredictResponse struct {
	Extracted        *[]string `json:"extracted"`
	Symptoms         []float64 `json:"symptoms"`
	PredictedDisease *string   `json:"predicted_disease"`
	Confidence       *float64  `json:"confidence"`
}

// RecognizeResponse: 200-ответ /recognize_image.
type RecognizeResponse struct {
	Prediction *string  `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

// ErrorBody: тело non-2xx ответа распознавания.
type ErrorBody struct {
	Error string `json:"error"`
}

// RawResponse is what a transport hands back for any HTTP answer it received.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *RawResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// PredictionView: то, что показывает UI после успешного предсказания.
type PredictionView struct {
	Extracted      []string
	Disease        string
	Slug           string
	Path           string
	Confidence     float64
	ConfidenceText string
}

// RecognitionView: то, что показывает UI после распознавания лекарства.
type RecognitionView struct {
	Medicine       string
	Slug           string
	Path           string
	Confidence     float64
	ConfidenceText string
}
