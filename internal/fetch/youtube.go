// Package fetch отвечает за получение треков: скачивание аудио с YouTube,
// поиск и фоновую оркестрацию загрузок
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/hazadus/go-vibeplay/internal/metadata"
)

// Result описывает результат скачивания трека
type Result struct {
	VideoID  string
	Title    string
	Artist   string
	URL      string
	FilePath string
	Duration time.Duration
}

// Downloader скачивает аудио с YouTube в локальный кэш
type Downloader struct {
	client    youtube.Client
	cacheDir  string
	extractor *metadata.Extractor
}

// NewDownloader создает загрузчик с заданным каталогом кэша
func NewDownloader(cacheDir string) *Downloader {
	return &Downloader{
		cacheDir:  cacheDir,
		extractor: metadata.NewExtractor(),
	}
}

// Download скачивает аудио видео в кэш и возвращает метаданные трека.
// Уже скачанный файл не качается повторно.
func (d *Downloader) Download(ctx context.Context, url string) (*Result, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	filePath := filepath.Join(d.cacheDir, videoID+".mp3")

	video, err := d.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о видео: %w", err)
	}

	result := &Result{
		VideoID:  videoID,
		Title:    video.Title,
		Artist:   video.Author,
		URL:      canonicalURL(videoID),
		FilePath: filePath,
		Duration: video.Duration,
	}

	// Файл уже в кэше — скачивать заново не нужно
	if _, err := os.Stat(filePath); err == nil {
		d.fillDuration(result)
		return result, nil
	}

	audioFormat := findBestAudioFormat(video.Formats)
	if audioFormat == nil {
		return nil, fmt.Errorf("аудио формат не найден для видео %s", videoID)
	}

	stream, _, err := d.client.GetStreamContext(ctx, video, audioFormat)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения потока: %w", err)
	}
	defer stream.Close()

	if err := os.MkdirAll(d.cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога кэша: %w", err)
	}

	// Качаем во временный файл, чтобы оборванная загрузка
	// не оставила в кэше половину трека
	tmpPath := filePath + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла: %w", err)
	}

	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка скачивания: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	d.fillDuration(result)
	return result, nil
}

// fillDuration дополняет метаданные длительностью из самого файла,
// если источник ее не сообщил
func (d *Downloader) fillDuration(result *Result) {
	if result.Duration > 0 {
		return
	}
	if duration, err := d.extractor.GetDuration(result.FilePath); err == nil {
		result.Duration = duration
	}
}

// CachedPath возвращает путь к файлу в кэше, если трек уже скачан
func (d *Downloader) CachedPath(url string) (string, bool) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return "", false
	}
	filePath := filepath.Join(d.cacheDir, videoID+".mp3")
	if _, err := os.Stat(filePath); err != nil {
		return "", false
	}
	return filePath, true
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID извлекает ID видео из различных форматов YouTube URL
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1], nil
		}
	}

	// Если это просто ID видео (11 символов)
	if bareVideoID.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("не удалось извлечь ID видео из URL: %s", url)
}

// canonicalURL возвращает канонический URL видео по его ID
func canonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// findBestAudioFormat находит лучший аудио формат для скачивания
func findBestAudioFormat(formats youtube.FormatList) *youtube.Format {
	// Сначала ищем форматы только с аудио
	audioFormats := formats.WithAudioChannels()

	if len(audioFormats) == 0 {
		// Если нет только аудио форматов, ищем видео+аудио форматы
		videoAudioFormats := formats.Type("video")
		for i := range videoAudioFormats {
			if videoAudioFormats[i].AudioChannels > 0 {
				return &videoAudioFormats[i]
			}
		}
		return nil
	}

	// Предпочитаем более высокий битрейт и контейнеры MP4/M4A
	bestFormat := &audioFormats[0]
	for i := range audioFormats {
		format := &audioFormats[i]
		if format.Bitrate > bestFormat.Bitrate {
			bestFormat = format
		}
		if strings.Contains(format.MimeType, "mp4") || strings.Contains(format.MimeType, "m4a") {
			if !strings.Contains(bestFormat.MimeType, "mp4") && !strings.Contains(bestFormat.MimeType, "m4a") {
				bestFormat = format
			}
		}
	}

	return bestFormat
}
