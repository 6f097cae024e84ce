package util

import (
	"bytes"
	"encoding/base64"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffMimeHTTP узнаёт форматы фото упаковок по сигнатуре.
func SniffMimeHTTP(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte{0xFF, 0xD8}):
		return "image/jpeg"
	case bytes.HasPrefix(b, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return "image/png"
	case bytes.HasPrefix(b, []byte("GIF87a")), bytes.HasPrefix(b, []byte("GIF89a")):
		return "image/gif"
	case len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "image/webp"
	}
	return "application/octet-stream"
}

// MIMEByExt возвращает тип по расширению имени файла ("" если неизвестно).
func MIMEByExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	t := mime.TypeByExtension(ext)
	if semi := strings.IndexByte(t, ';'); semi >= 0 {
		t = t[:semi]
	}
	return strings.TrimSpace(t)
}

func MakeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PickMIME берём явный MIME, затем подсказку (расширение), иначе детектим по байтам.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		if s := SniffMimeHTTP(data); s != "application/octet-stream" {
			return s
		}
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}
