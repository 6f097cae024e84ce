package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"medassist/api/internal/content"
	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
	"medassist/api/internal/inference"
	"medassist/api/internal/store"
)

// BotAPI: часть *tgbotapi.BotAPI, которой пользуется роутер.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// History пишет и читает журнал отправок; nil отключает /history.
type History interface {
	Insert(ctx context.Context, e store.Entry) (int64, error)
	Recent(ctx context.Context, chatID int64, limit int) ([]store.Entry, error)
}

type Router struct {
	Bot        BotAPI
	Engines    *inference.Engines
	EngManager *inference.Manager
	Catalog    *content.Catalog
	History    History
	HTTPClient *http.Client

	ContentBaseURL string
	Timeout        time.Duration
	Log            *zap.Logger

	sessions sync.Map // chatID -> *session
	wg       sync.WaitGroup
}

func (r *Router) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func zapChat(chatID int64) zap.Field { return zap.Int64("chat_id", chatID) }

// Wait blocks until every reply started so far has been sent.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, msg)
	case msg.Document != nil:
		r.acceptDocument(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		r.predict(ctx, cid, msg.Text)
	}
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		r.send(cid, startText)
	case "health":
		r.send(cid, "✅ OK")
	case "predict":
		r.predict(ctx, cid, args)
	case "profile":
		r.handleProfile(cid, args)
	case "engine":
		r.handleEngineCommand(cid, args)
	case "history":
		r.handleHistory(ctx, cid)
	default:
		r.send(cid, "Unknown command. Try /help")
	}
}

// predict подставляет описание в форму чата и отправляет её.
func (r *Router) predict(ctx context.Context, chatID int64, description string) {
	s := r.session(chatID)

	s.mu.Lock()
	if s.text.Pending() {
		s.mu.Unlock()
		r.send(chatID, stillProcessingText)
		return
	}
	s.text.Form.Description = description
	task, started := s.text.Submit(ctx)
	s.mu.Unlock()

	if !started {
		r.send(chatID, stillProcessingText)
		return
	}
	engine := r.EngManager.Get(chatID).Name()
	if task.State().Phase == flow.Pending {
		r.send(chatID, "🔎 Analyzing your symptoms…")
	}
	r.await(chatID, func() {
		st, _ := task.Wait(context.Background())
		r.record(chatID, predictEntry(chatID, engine, st))
		if st.Phase == flow.Succeeded {
			r.send(chatID, r.formatPrediction(st.Result))
			return
		}
		r.send(chatID, formatError(st.Message()))
	})
}

// recognize выбирает картинку и отправляет её; вызывающий уже проверил Pending.
func (r *Router) recognize(ctx context.Context, chatID int64, img *types.Image) {
	s := r.session(chatID)

	s.mu.Lock()
	s.image.Select(img)
	task, started := s.image.Submit(ctx)
	s.mu.Unlock()

	if !started {
		r.send(chatID, stillProcessingText)
		return
	}
	engine := r.EngManager.Get(chatID).Name()
	r.await(chatID, func() {
		st, _ := task.Wait(context.Background())
		r.record(chatID, recognizeEntry(chatID, engine, st))
		if st.Phase == flow.Succeeded {
			r.send(chatID, r.formatRecognition(st.Result))
			return
		}
		r.send(chatID, formatError(st.Message()))
	})
}

func (r *Router) await(chatID int64, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.logger().Error("reply panicked", zapChat(chatID), zap.Any("panic", p))
			}
		}()
		fn()
	}()
}

func (r *Router) record(chatID int64, e store.Entry) {
	if r.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.History.Insert(ctx, e); err != nil {
		r.logger().Warn("history insert failed", zapChat(chatID), zap.Error(err))
	}
}

func (r *Router) handleHistory(ctx context.Context, chatID int64) {
	if r.History == nil {
		r.send(chatID, "History is not enabled on this bot.")
		return
	}
	entries, err := r.History.Recent(ctx, chatID, historyLimit)
	if err != nil {
		r.logger().Warn("history read failed", zapChat(chatID), zap.Error(err))
		r.send(chatID, formatError("Could not load history."))
		return
	}
	r.send(chatID, formatHistory(entries))
}

// handleEngineCommand переключает движок для чата.
//
//	/engine
//	/engine http
//	/engine gemini [model]
func (r *Router) handleEngineCommand(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		r.send(chatID, fmt.Sprintf("Current engine: %s\nUsage: /engine {%s} [model]",
			r.EngManager.Get(chatID).Name(), strings.Join(r.Engines.Names(), "|")))
		return
	}
	eng, err := r.Engines.GetEngine(fields[0])
	if err != nil {
		r.send(chatID, "❌ "+err.Error())
		return
	}

	type modelSetter interface {
		SetModel(string)
		GetModel() string
	}
	suffix := ""
	if ms, ok := eng.(modelSetter); ok {
		if len(fields) > 1 {
			ms.SetModel(fields[1])
		}
		suffix = " (" + ms.GetModel() + ")"
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, "✅ Engine: "+eng.Name()+suffix)
}

// Telegram режет сообщения длиннее 4096 символов; оставляем запас под эмодзи и хвост.
const maxMessageBytes = 3900

// truncate cuts s to at most n bytes on a rune boundary and marks the cut with "…".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageBytes))
	msg.DisableWebPagePreview = true
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Warn("send failed", zapChat(chatID), zap.Error(err))
	}
}
