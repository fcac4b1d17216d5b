// Package library содержит постоянную библиотеку загруженных треков
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry описывает один трек библиотеки
type Entry struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	URL          string `json:"url"`
	DurationSecs int    `json:"duration_secs"` // Длительность трека в секундах
	FilePath     string `json:"file_path"`     // Путь к локальному файлу
	RemoteURL    string `json:"remote_url,omitempty"` // URL трека в хранилище S3
	DownloadedAt string `json:"downloaded_at"`
}

// Duration возвращает длительность трека
func (e *Entry) Duration() time.Duration {
	return time.Duration(e.DurationSecs) * time.Second
}

// Library управляет списком загруженных треков с сохранением на диск
type Library struct {
	mutex    sync.Mutex
	filePath string
	entries  []Entry
}

// New создает библиотеку, привязанную к файлу
func New(filePath string) *Library {
	return &Library{filePath: filePath}
}

// Load загружает библиотеку из файла
func (l *Library) Load() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	path, err := expandPath(l.filePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Если файл не найден, начинаем с пустой библиотеки
		if os.IsNotExist(err) {
			l.entries = nil
			return nil
		}
		return fmt.Errorf("ошибка чтения файла библиотеки: %w", err)
	}
	if len(data) == 0 {
		l.entries = nil
		return nil
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return fmt.Errorf("ошибка разбора библиотеки: %w", err)
	}
	return nil
}

// Save сохраняет библиотеку в файл
func (l *Library) Save() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.saveInternal()
}

// saveInternal пишет файл (должен вызываться под мьютексом)
func (l *Library) saveInternal() error {
	path, err := expandPath(l.filePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога библиотеки: %w", err)
	}

	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации библиотеки: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла библиотеки: %w", err)
	}
	return nil
}

// Add добавляет трек в библиотеку или обновляет существующий по VideoID,
// затем сохраняет файл
func (l *Library) Add(entry Entry) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if entry.DownloadedAt == "" {
		entry.DownloadedAt = time.Now().Format(time.RFC3339)
	}
	for i := range l.entries {
		if l.entries[i].VideoID == entry.VideoID {
			l.entries[i] = entry
			return l.saveInternal()
		}
	}
	l.entries = append(l.entries, entry)
	return l.saveInternal()
}

// FindByURL возвращает трек по URL источника
func (l *Library) FindByURL(url string) (Entry, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for i := range l.entries {
		if l.entries[i].URL == url {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}

// FindByVideoID возвращает трек по идентификатору видео
func (l *Library) FindByVideoID(videoID string) (Entry, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for i := range l.entries {
		if l.entries[i].VideoID == videoID {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}

// SetRemoteURL сохраняет URL трека в S3 после выгрузки
func (l *Library) SetRemoteURL(videoID, remoteURL string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for i := range l.entries {
		if l.entries[i].VideoID == videoID {
			l.entries[i].RemoteURL = remoteURL
			return l.saveInternal()
		}
	}
	return fmt.Errorf("трека с ID %q не найдено", videoID)
}

// Entries возвращает копию списка треков
func (l *Library) Entries() []Entry {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len возвращает число треков в библиотеке
func (l *Library) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.entries)
}

// expandPath разворачивает тильду в домашний каталог
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", home, 1), nil
}
