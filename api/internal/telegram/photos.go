package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"medassist/api/internal/flow/types"
)

// лимит Telegram Bot API на getFile
const maxFileSize = 20 << 20

func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1] // самое большое превью
	r.acceptFile(ctx, cid, ph.FileID, "", "", ph.FileSize)
}

func (r *Router) acceptDocument(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	doc := msg.Document
	if !strings.HasPrefix(strings.ToLower(doc.MimeType), "image/") {
		r.send(cid, "Please send a photo or an image file of the medicine.")
		return
	}
	r.acceptFile(ctx, cid, doc.FileID, doc.FileName, doc.MimeType, doc.FileSize)
}

func (r *Router) acceptFile(ctx context.Context, chatID int64, fileID, name, mimeType string, size int) {
	if r.session(chatID).image.Pending() {
		r.send(chatID, stillProcessingText)
		return
	}
	if size > maxFileSize {
		r.send(chatID, formatError("The image is too large (max 20 MB)."))
		return
	}

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.logger().Warn("get file failed", zapChat(chatID), zap.Error(err))
		r.send(chatID, formatError("Could not fetch the image from Telegram."))
		return
	}
	data, err := r.download(ctx, url)
	if err != nil {
		r.logger().Warn("download failed", zapChat(chatID), zap.Error(err))
		r.send(chatID, formatError("Could not fetch the image from Telegram."))
		return
	}
	if name == "" {
		name = path.Base(url)
	}
	r.send(chatID, "📷 Image received, recognizing…")
	r.recognize(ctx, chatID, &types.Image{Name: name, MIME: mimeType, Data: data})
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
