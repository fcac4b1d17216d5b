package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hazadus/go-vibeplay/internal/library"
	"github.com/hazadus/go-vibeplay/internal/state"
)

// TrackFetcher скачивает треки; выделен в интерфейс для тестов
type TrackFetcher interface {
	Download(ctx context.Context, url string) (*Result, error)
	CachedPath(url string) (string, bool)
}

// Orchestrator управляет фоновыми загрузками: ставит заглушки в очередь,
// запускает горутины скачивания и разрешает записи по завершении.
// Результат загрузки привязывается к записи очереди по URL источника:
// если запись к этому моменту удалили, завершение становится no-op.
type Orchestrator struct {
	ctx     context.Context
	state   *state.State
	library *library.Library
	fetcher TrackFetcher
}

// NewOrchestrator создает оркестратор загрузок
func NewOrchestrator(ctx context.Context, st *state.State, lib *library.Library, fetcher TrackFetcher) *Orchestrator {
	return &Orchestrator{
		ctx:     ctx,
		state:   st,
		library: lib,
		fetcher: fetcher,
	}
}

// EnqueueURL добавляет трек по URL в очередь воспроизведения.
// Скачанный ранее трек сразу готов; иначе в очередь встает заглушка,
// а загрузка идет в фоне.
func (o *Orchestrator) EnqueueURL(url string) {
	key := normalizeURL(url)

	// Трек уже в библиотеке с локальным файлом — готов сразу
	if entry, ok := o.library.FindByURL(key); ok && entry.FilePath != "" {
		if _, cached := o.fetcher.CachedPath(key); cached {
			track := state.Track{
				Title:    entry.Title,
				Artist:   entry.Artist,
				URL:      entry.URL,
				FilePath: entry.FilePath,
				Duration: entry.Duration(),
				Status:   state.StatusReady,
			}
			o.state.PushQueue(track)
			return
		}
	}

	o.state.PushQueue(state.NewDownloadingTrack(key))

	go func() {
		result, err := o.fetcher.Download(o.ctx, key)
		if err != nil {
			log.Printf("Ошибка загрузки %s: %v", key, err)
			o.state.SetStatusMessage(fmt.Sprintf("Ошибка загрузки: %v", err))
			return
		}
		o.persist(result)
		o.state.ResolveQueueEntry(key, result.Title, result.Artist, result.FilePath, result.Duration)
	}()
}

// PlayURL запускает воспроизведение трека по URL, по необходимости
// предварительно скачав его
func (o *Orchestrator) PlayURL(url string) {
	key := normalizeURL(url)

	if entry, ok := o.library.FindByURL(key); ok && entry.FilePath != "" {
		if _, cached := o.fetcher.CachedPath(key); cached {
			o.state.Enqueue(state.PlayFileCommand{
				Path:     entry.FilePath,
				Title:    entry.Title,
				Artist:   entry.Artist,
				URL:      entry.URL,
				Duration: entry.Duration(),
			})
			return
		}
	}

	o.state.SetStatusMessage("Загрузка трека...")

	go func() {
		result, err := o.fetcher.Download(o.ctx, key)
		if err != nil {
			log.Printf("Ошибка загрузки %s: %v", key, err)
			o.state.SetStatusMessage(fmt.Sprintf("Ошибка загрузки: %v", err))
			return
		}
		o.persist(result)
		o.state.Enqueue(state.PlayFileCommand{
			Path:     result.FilePath,
			Title:    result.Title,
			Artist:   result.Artist,
			URL:      result.URL,
			Duration: result.Duration,
		})
	}()
}

// persist записывает скачанный трек в библиотеку и в разделяемое состояние
func (o *Orchestrator) persist(result *Result) {
	entry := library.Entry{
		VideoID:      result.VideoID,
		Title:        result.Title,
		Artist:       result.Artist,
		URL:          result.URL,
		DurationSecs: int(result.Duration / time.Second),
		FilePath:     result.FilePath,
	}
	if err := o.library.Add(entry); err != nil {
		log.Printf("Ошибка сохранения библиотеки: %v", err)
	}

	o.state.PushLibrary(state.Track{
		Title:    result.Title,
		Artist:   result.Artist,
		URL:      result.URL,
		FilePath: result.FilePath,
		Duration: result.Duration,
		Status:   state.StatusReady,
	})
}

// normalizeURL приводит URL к каноническому виду, чтобы записи очереди,
// библиотеки и кэша использовали один и тот же ключ
func normalizeURL(url string) string {
	if videoID, err := ExtractVideoID(url); err == nil {
		return canonicalURL(videoID)
	}
	return url
}
