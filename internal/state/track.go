// Package state содержит разделяемое состояние сессии плеера:
// очередь треков, текущий трек, курсоры интерфейса и очередь команд
package state

import "time"

// Status представляет статус трека в очереди
type Status int

// Статусы трека. Статус движется только вперед:
// Queued -> Downloading -> Ready -> Playing -> Played
const (
	StatusQueued Status = iota
	StatusDownloading
	StatusReady
	StatusPlaying
	StatusPlayed
)

// String возвращает текстовое представление статуса
func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "в очереди"
	case StatusDownloading:
		return "загрузка"
	case StatusReady:
		return "готов"
	case StatusPlaying:
		return "играет"
	case StatusPlayed:
		return "прослушан"
	default:
		return "неизвестно"
	}
}

// allowedTransitions — таблица допустимых переходов статуса
var allowedTransitions = map[Status][]Status{
	StatusQueued:      {StatusDownloading, StatusReady},
	StatusDownloading: {StatusReady},
	StatusReady:       {StatusPlaying},
	StatusPlaying:     {StatusPlayed},
}

// CanAdvance сообщает, допустим ли переход из статуса s в статус to
func (s Status) CanAdvance(to Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Track описывает один трек: метаданные, источник и статус
type Track struct {
	Title    string
	Artist   string
	URL      string        // Идентификатор источника (URL видео)
	FilePath string        // Путь к локальному файлу, пустой пока трек не загружен
	Duration time.Duration // Известная длительность, 0 если неизвестна
	Status   Status
}

// NewQueuedTrack создает трек со статусом "в очереди"
func NewQueuedTrack(title, artist, url string) Track {
	return Track{
		Title:  title,
		Artist: artist,
		URL:    url,
		Status: StatusQueued,
	}
}

// NewDownloadingTrack создает трек-заглушку на время загрузки
func NewDownloadingTrack(url string) Track {
	return Track{
		Title:  "Загрузка...",
		URL:    url,
		Status: StatusDownloading,
	}
}

// NowPlaying описывает текущий трек вместе с учетом времени воспроизведения
type NowPlaying struct {
	Track       Track
	StartedAt   time.Time
	PausedTotal time.Duration // Суммарное время проведенное на паузе
	PausedAt    time.Time     // Момент начала текущей паузы, нулевое значение если не на паузе
}

// Elapsed возвращает позицию воспроизведения по настенным часам:
// время с момента старта за вычетом всех интервалов паузы,
// включая открытую в данный момент паузу.
func (np *NowPlaying) Elapsed() time.Duration {
	if !np.PausedAt.IsZero() {
		return np.PausedAt.Sub(np.StartedAt) - np.PausedTotal
	}
	return time.Since(np.StartedAt) - np.PausedTotal
}

// markPaused фиксирует начало паузы; повторный вызов ничего не меняет
func (np *NowPlaying) markPaused() {
	if np.PausedAt.IsZero() {
		np.PausedAt = time.Now()
	}
}

// markResumed закрывает текущую паузу и добавляет ее к накопленному времени
func (np *NowPlaying) markResumed() {
	if !np.PausedAt.IsZero() {
		np.PausedTotal += time.Since(np.PausedAt)
		np.PausedAt = time.Time{}
	}
}
