// Package metadata предоставляет функционал для извлечения метаданных из аудио файлов
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
)

// TrackInfo хранит метаданные трека
type TrackInfo struct {
	Artist string
	Title  string
	Album  string
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из io.Reader
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackInfo {
	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallbackInfo(source)
	}

	tags, err := tag.ReadFrom(reader)
	if err != nil {
		return fallbackInfo(source)
	}

	info := TrackInfo{
		Artist: tags.Artist(),
		Title:  tags.Title(),
		Album:  tags.Album(),
	}
	// У скачанных с YouTube файлов теги часто пустые
	if info.Title == "" {
		fallback := fallbackInfo(source)
		info.Title = fallback.Title
		if info.Artist == "" {
			info.Artist = fallback.Artist
		}
	}
	return info
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackInfo {
	file, err := os.Open(filePath)
	if err != nil {
		return fallbackInfo(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// fallbackInfo строит метаданные из имени файла, когда тегов нет.
// Имена вида "Artist - Title" разбираются на части.
func fallbackInfo(source string) TrackInfo {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackInfo{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return TrackInfo{
		Title: nameWithoutExt,
	}
}
