package flow

import (
	"context"

	"medassist/api/internal/flow/types"
)

type Predictor interface {
	PostPrediction(ctx context.Context, payload types.PredictPayload) (*types.RawResponse, error)
}

// TextFlow owns the symptom form and the request state of one predictor view.
// Form may be edited freely by the owning view, also while a request is pending:
// Submit takes its own copy.
type TextFlow struct {
	Form types.SymptomForm

	client Predictor
	d      *dispatcher[types.PredictionView]
}

func NewTextFlow(client Predictor, opts ...Option) *TextFlow {
	return &TextFlow{
		client: client,
		d:      newDispatcher[types.PredictionView]("predict", buildOptions(opts)),
	}
}

func (f *TextFlow) State() State[types.PredictionView] { return f.d.snapshot() }

func (f *TextFlow) Pending() bool { return f.d.pending() }

// Submit validates the form and posts it. The second return value is false when the
// call was a no-op because an earlier submission is still pending; the returned task is
// then that earlier one.
func (f *TextFlow) Submit(ctx context.Context) (*Task[types.PredictionView], bool) {
	payload, err := ValidateSymptoms(f.Form)
	if err != nil {
		return f.d.fail(err)
	}
	return f.d.start(ctx, func(ctx context.Context) (types.PredictionView, error) {
		raw, err := f.client.PostPrediction(ctx, payload)
		if err != nil {
			return types.PredictionView{}, transportFailure(err, f.d.timeout)
		}
		return InterpretPrediction(raw)
	})
}
