package streaming

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewReaderReadsContent(t *testing.T) {
	content := strings.Repeat("mp3-data-", 100)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Клиент должен просить поток без сжатия и с начала файла
		if r.Header.Get("Accept-Encoding") != "identity" {
			t.Errorf("Ожидался Accept-Encoding: identity, получено: %s", r.Header.Get("Accept-Encoding"))
		}
		if r.Header.Get("Range") != "bytes=0-" {
			t.Errorf("Ожидался Range: bytes=0-, получено: %s", r.Header.Get("Range"))
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Errorf("Ошибка записи ответа: %v", err)
		}
	}))
	defer server.Close()

	reader, err := NewReader(context.Background(), server.URL, 1024)
	if err != nil {
		t.Fatalf("Ошибка создания ридера: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Ошибка чтения потока: %v", err)
	}
	if string(data) != content {
		t.Errorf("Прочитанные данные не совпадают: длина %d, ожидалось %d", len(data), len(content))
	}
}

func TestNewReaderPartialContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("partial"))
	}))
	defer server.Close()

	reader, err := NewReader(context.Background(), server.URL, 1024)
	if err != nil {
		t.Fatalf("Статус 206 должен приниматься, ошибка: %v", err)
	}
	defer reader.Close()
}

func TestNewReaderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewReader(context.Background(), server.URL, 1024)
	if err == nil {
		t.Fatal("Ожидалась ошибка для статуса 404")
	}
	if !strings.Contains(err.Error(), "ошибка HTTP") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestNewReaderInvalidURL(t *testing.T) {
	_, err := NewReader(context.Background(), "://invalid", 1024)
	if err == nil {
		t.Fatal("Ожидалась ошибка для некорректного URL")
	}
}

func TestNewReaderContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(ctx, server.URL, 1024)
	if err == nil {
		t.Fatal("Ожидалась ошибка для отмененного контекста")
	}
}
