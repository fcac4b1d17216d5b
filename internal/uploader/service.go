// Package uploader выгружает треки библиотеки в облачное хранилище
package uploader

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hazadus/go-vibeplay/internal/library"
	"github.com/hazadus/go-vibeplay/internal/s3"
)

// Storage — облачное хранилище треков; выделено в интерфейс для тестов
type Storage interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	ObjectURL(key string) string
}

// Service управляет выгрузкой треков библиотеки в S3
type Service struct {
	storage Storage
	library *library.Library
}

// NewService создает сервис выгрузки
func NewService(storage Storage, lib *library.Library) *Service {
	return &Service{
		storage: storage,
		library: lib,
	}
}

// PushResult содержит результат выгрузки
type PushResult struct {
	Entry     library.Entry
	RemoteURL string
	Size      int64
}

// PushTrack выгружает скачанный трек в хранилище и запоминает его URL
// в библиотеке. Повторная выгрузка сначала удаляет старый объект.
func (s *Service) PushTrack(ctx context.Context, videoID string, progressCallback func(int64)) (*PushResult, error) {
	entry, ok := s.library.FindByVideoID(videoID)
	if !ok {
		return nil, fmt.Errorf("трека %q нет в библиотеке", videoID)
	}
	if entry.FilePath == "" {
		return nil, fmt.Errorf("трек %q не скачан", videoID)
	}

	fileInfo, err := os.Stat(entry.FilePath)
	if err != nil {
		return nil, fmt.Errorf("файл трека недоступен: %w", err)
	}

	file, err := os.Open(entry.FilePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	// Создаем reader с отслеживанием прогресса
	var reader io.Reader = file
	if progressCallback != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       fileInfo.Size(),
			OnProgress: progressCallback,
		}
	}

	key := videoID + ".mp3"

	// Трек уже выгружался: убираем старый объект перед заменой
	if entry.RemoteURL != "" {
		if err := s.storage.DeleteFile(ctx, key); err != nil {
			return nil, fmt.Errorf("ошибка удаления старой версии: %w", err)
		}
	}

	url, err := s.storage.UploadFile(ctx, reader, key)
	if err != nil {
		return nil, fmt.Errorf("ошибка выгрузки в S3: %w", err)
	}

	if err := s.library.SetRemoteURL(videoID, url); err != nil {
		return nil, fmt.Errorf("ошибка сохранения URL в библиотеке: %w", err)
	}

	entry.RemoteURL = url
	return &PushResult{
		Entry:     entry,
		RemoteURL: url,
		Size:      fileInfo.Size(),
	}, nil
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Проверка реализации интерфейса
var _ Storage = (*s3.Uploader)(nil)
