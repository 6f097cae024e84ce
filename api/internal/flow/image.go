package flow

import (
	"context"
	"sync"

	"medassist/api/internal/flow/types"
)

type Recognizer interface {
	PostImage(ctx context.Context, img types.Image) (*types.RawResponse, error)
}

// ImageFlow owns the selected file, its preview and the request state of one
// recognizer view.
type ImageFlow struct {
	client Recognizer
	d      *dispatcher[types.RecognitionView]

	mu       sync.Mutex
	selected *types.Image
	preview  string
	gen      uint64
}

func NewImageFlow(client Recognizer, opts ...Option) *ImageFlow {
	return &ImageFlow{
		client: client,
		d:      newDispatcher[types.RecognitionView]("recognize", buildOptions(opts)),
	}
}

func (f *ImageFlow) State() State[types.RecognitionView] { return f.d.snapshot() }

func (f *ImageFlow) Pending() bool { return f.d.pending() }

// Select replaces the current selection (nil clears it) and drops any displayed
// prediction, confidence and error. The preview is encoded in the background; the
// returned channel closes once it is available. A later Select discards an
// unfinished preview.
func (f *ImageFlow) Select(img *types.Image) <-chan struct{} {
	ready := make(chan struct{})

	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.preview = ""
	if img == nil {
		f.selected = nil
	} else {
		cp := *img
		f.selected = &cp
	}
	sel := f.selected
	f.mu.Unlock()

	f.d.reset()

	if sel == nil {
		close(ready)
		return ready
	}
	go func(img types.Image) {
		defer close(ready)
		url := PreviewDataURL(img)
		f.mu.Lock()
		if f.gen == gen {
			f.preview = url
		}
		f.mu.Unlock()
	}(*sel)
	return ready
}

func (f *ImageFlow) Selected() *types.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Preview is "" until the data URL of the current selection is ready.
func (f *ImageFlow) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// Submit posts the selected image. It never waits for the preview.
func (f *ImageFlow) Submit(ctx context.Context) (*Task[types.RecognitionView], bool) {
	img, err := ValidateImage(f.Selected())
	if err != nil {
		return f.d.fail(err)
	}
	return f.d.start(ctx, func(ctx context.Context) (types.RecognitionView, error) {
		raw, err := f.client.PostImage(ctx, img)
		if err != nil {
			return types.RecognitionView{}, transportFailure(err, f.d.timeout)
		}
		return InterpretRecognition(raw)
	})
}
