package telegram

import (
	"context"
	"sync"

	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
	"medassist/api/internal/inference"
)

// session: состояние одного чата: свой TextFlow и свой ImageFlow.
type session struct {
	chatID int64

	mu    sync.Mutex // Form правится из разных апдейтов
	text  *flow.TextFlow
	image *flow.ImageFlow
}

// chatEngine ходит в движок, выбранный чатом на момент запроса.
type chatEngine struct {
	m      *inference.Manager
	chatID int64
}

func (c chatEngine) PostPrediction(ctx context.Context, p types.PredictPayload) (*types.RawResponse, error) {
	return c.m.Get(c.chatID).PostPrediction(ctx, p)
}

func (c chatEngine) PostImage(ctx context.Context, img types.Image) (*types.RawResponse, error) {
	return c.m.Get(c.chatID).PostImage(ctx, img)
}

func (r *Router) session(chatID int64) *session {
	if v, ok := r.sessions.Load(chatID); ok {
		return v.(*session)
	}
	eng := chatEngine{m: r.EngManager, chatID: chatID}
	opts := []flow.Option{flow.WithTimeout(r.Timeout), flow.WithLogger(r.logger().With(zapChat(chatID)))}
	s := &session{
		chatID: chatID,
		text:   flow.NewTextFlow(eng, opts...),
		image:  flow.NewImageFlow(eng, opts...),
	}
	v, _ := r.sessions.LoadOrStore(chatID, s)
	return v.(*session)
}
