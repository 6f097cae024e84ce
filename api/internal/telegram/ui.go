package telegram

import (
	"fmt"
	"strings"

	"medassist/api/internal/content"
	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
	"medassist/api/internal/store"
)

const (
	historyLimit        = 5
	stillProcessingText = "⏳ Still processing your previous request, please wait."
	startText           = "Describe your symptoms in a message and I will suggest a likely condition.\n" +
		"Send a photo of a medicine package and I will try to recognize it.\n\n" +
		"Commands:\n" +
		"/predict <symptoms> - predict a disease\n" +
		"/profile key=value… - age, gender, weight, height, name, notes\n" +
		"/engine [name] [model] - choose the inference engine\n" +
		"/history - your recent results\n" +
		"/health - bot status"
)

func (r *Router) link(path string) string {
	return strings.TrimRight(r.ContentBaseURL, "/") + path
}

func (r *Router) summary(kind content.Kind, slug string) string {
	if r.Catalog == nil {
		return ""
	}
	if p, ok := r.Catalog.Lookup(kind, slug); ok {
		return p.Summary
	}
	return ""
}

func (r *Router) formatPrediction(v types.PredictionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🩺 Predicted disease: %s\nConfidence: %s\n", v.Disease, v.ConfidenceText)
	if len(v.Extracted) > 0 {
		fmt.Fprintf(&b, "Extracted symptoms: %s\n", strings.Join(v.Extracted, ", "))
	}
	if s := r.summary(content.Diseases, v.Slug); s != "" {
		b.WriteString("\n" + s + "\n")
	}
	b.WriteString("\nMore: " + r.link(v.Path))
	return b.String()
}

func (r *Router) formatRecognition(v types.RecognitionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💊 Medicine: %s\nConfidence: %s\n", v.Medicine, v.ConfidenceText)
	if s := r.summary(content.Medicines, v.Slug); s != "" {
		b.WriteString("\n" + s + "\n")
	}
	b.WriteString("\nMore: " + r.link(v.Path))
	return b.String()
}

func formatError(msg string) string { return "❌ " + msg }

func formatHistory(entries []store.Entry) string {
	if len(entries) == 0 {
		return "No submissions yet."
	}
	var b strings.Builder
	b.WriteString("🗂 Recent results\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s %s: ", e.CreatedAt.Format("2006-01-02 15:04"), e.Flow)
		if e.Failed() {
			b.WriteString("error: " + e.Error)
			continue
		}
		b.WriteString(e.Label)
		if e.Confidence != nil {
			prec := flow.TextPrecision
			if e.Flow == store.FlowRecognize {
				prec = flow.ImagePrecision
			}
			b.WriteString(" (" + flow.FormatPercent(*e.Confidence, prec) + ")")
		}
	}
	return b.String()
}

func predictEntry(chatID int64, engine string, st flow.State[types.PredictionView]) store.Entry {
	e := store.Entry{ChatID: chatID, Flow: store.FlowPredict, Engine: engine}
	if st.Phase != flow.Succeeded {
		e.Error = st.Message()
		return e
	}
	conf := st.Result.Confidence
	e.Label, e.Slug, e.Confidence = st.Result.Disease, st.Result.Slug, &conf
	e.Extracted = st.Result.Extracted
	return e
}

func recognizeEntry(chatID int64, engine string, st flow.State[types.RecognitionView]) store.Entry {
	e := store.Entry{ChatID: chatID, Flow: store.FlowRecognize, Engine: engine}
	if st.Phase != flow.Succeeded {
		e.Error = st.Message()
		return e
	}
	conf := st.Result.Confidence
	e.Label, e.Slug, e.Confidence = st.Result.Medicine, st.Result.Slug, &conf
	return e
}
