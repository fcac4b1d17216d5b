package state

import (
	"sync"
	"time"

	"github.com/hazadus/go-vibeplay/internal/analyzer"
)

// Panel определяет панель интерфейса, на которой находится фокус
type Panel int

// Панели интерфейса
const (
	PanelLibrary Panel = iota
	PanelQueue
)

// AgentActivity представляет текущую активность агента
type AgentActivity int

// Состояния агента
const (
	AgentIdle AgentActivity = iota
	AgentThinking
	AgentActing
)

// ProgressArea — кликабельная область прогресс-бара:
// строка экрана и диапазон колонок
type ProgressArea struct {
	Row      int
	ColStart int
	ColEnd   int
}

// State — единственный источник правды о сессии плеера. Разделяется между
// главным циклом, фоновыми задачами загрузки и агентом; все изменения
// проходят через один мьютекс, снаружи сырые ссылки на поля не выдаются —
// только короткие защищенные операции, копирующие наружу или меняющие на месте.
type State struct {
	mutex sync.Mutex

	queue   []Track
	library []Track
	current *NowPlaying

	focused       Panel
	libraryCursor int
	queueCursor   int

	agentActivity AgentActivity
	agentTool     string

	volume        int
	paused        bool
	features      analyzer.Features
	position      time.Duration
	statusMessage string
	progressArea  *ProgressArea

	commands   []Command
	shouldQuit bool
}

// New создает новое состояние сессии с заданной громкостью
func New(volume int) *State {
	return &State{
		volume:  volume,
		focused: PanelLibrary,
	}
}

// Snapshot — копия состояния для отрисовки и для контекста агента.
// Снимается целиком под блокировкой, дальше используется без нее.
type Snapshot struct {
	Queue   []Track
	Library []Track
	Current *NowPlaying

	Focused       Panel
	LibraryCursor int
	QueueCursor   int

	AgentActivity AgentActivity
	AgentTool     string

	Volume        int
	Paused        bool
	Features      analyzer.Features
	Position      time.Duration
	StatusMessage string
}

// Snapshot возвращает копию состояния
func (s *State) Snapshot() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap := Snapshot{
		Queue:         append([]Track(nil), s.queue...),
		Library:       append([]Track(nil), s.library...),
		Focused:       s.focused,
		LibraryCursor: s.libraryCursor,
		QueueCursor:   s.queueCursor,
		AgentActivity: s.agentActivity,
		AgentTool:     s.agentTool,
		Volume:        s.volume,
		Paused:        s.paused,
		Features:      s.features,
		Position:      s.position,
		StatusMessage: s.statusMessage,
	}
	if s.current != nil {
		current := *s.current
		snap.Current = &current
	}
	return snap
}

// Enqueue добавляет команду в очередь на применение главным циклом
func (s *State) Enqueue(cmd Command) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.commands = append(s.commands, cmd)
}

// DrainCommands забирает все накопленные команды в порядке добавления
func (s *State) DrainCommands() []Command {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cmds := s.commands
	s.commands = nil
	return cmds
}

// PushQueue добавляет трек в конец очереди
func (s *State) PushQueue(t Track) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.queue = append(s.queue, t)
}

// ClearQueue очищает очередь
func (s *State) ClearQueue() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.queue = nil
	s.clampCursors()
}

// QueueLen возвращает длину очереди
func (s *State) QueueLen() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.queue)
}

// ResolveQueueEntry находит запись очереди по идентификатору источника и
// переводит ее в статус Ready с заполненными метаданными. Возвращает false,
// если запись не найдена (например, очередь очистили во время загрузки —
// тогда завершение становится no-op) или переход статуса недопустим.
func (s *State) ResolveQueueEntry(url, title, artist, filePath string, duration time.Duration) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.queue {
		if s.queue[i].URL != url {
			continue
		}
		if !s.queue[i].Status.CanAdvance(StatusReady) {
			return false
		}
		s.queue[i].Title = title
		s.queue[i].Artist = artist
		s.queue[i].FilePath = filePath
		s.queue[i].Duration = duration
		s.queue[i].Status = StatusReady
		return true
	}
	return false
}

// PopReadySong снимает с очереди первый трек со статусом Ready и локальным
// файлом. Записи с другими статусами пропускаются на месте и остаются в
// очереди. Ready-запись без файла тоже остается на месте: проверим на
// следующем тике.
func (s *State) PopReadySong() (Track, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.queue {
		if s.queue[i].Status != StatusReady {
			continue
		}
		if s.queue[i].FilePath == "" {
			return Track{}, false
		}
		t := s.queue[i]
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		s.clampCursors()
		return t, true
	}
	return Track{}, false
}

// HasReadySong сообщает, есть ли в очереди хоть одна запись со статусом Ready
func (s *State) HasReadySong() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i := range s.queue {
		if s.queue[i].Status == StatusReady {
			return true
		}
	}
	return false
}

// RemoveQueueAt удаляет трек из очереди по индексу
func (s *State) RemoveQueueAt(index int) (Track, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if index < 0 || index >= len(s.queue) {
		return Track{}, false
	}
	t := s.queue[index]
	s.queue = append(s.queue[:index], s.queue[index+1:]...)
	s.clampCursors()
	return t, true
}

// PushLibrary добавляет трек в библиотеку, избегая дублей по URL
func (s *State) PushLibrary(t Track) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.library {
		if s.library[i].URL == t.URL {
			return
		}
	}
	s.library = append(s.library, t)
}

// LibraryTrack возвращает трек библиотеки по индексу
func (s *State) LibraryTrack(index int) (Track, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if index < 0 || index >= len(s.library) {
		return Track{}, false
	}
	return s.library[index], true
}

// QueueTrack возвращает трек очереди по индексу
func (s *State) QueueTrack(index int) (Track, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if index < 0 || index >= len(s.queue) {
		return Track{}, false
	}
	return s.queue[index], true
}

// SetCurrent делает трек текущим и запускает отсчет времени воспроизведения
func (s *State) SetCurrent(t Track) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t.Status.CanAdvance(StatusPlaying) {
		t.Status = StatusPlaying
	}
	s.current = &NowPlaying{
		Track:     t,
		StartedAt: time.Now(),
	}
	s.paused = false
	s.position = 0
}

// ClearCurrent сбрасывает текущий трек (остановка, пропуск
// или исчерпание очереди)
func (s *State) ClearCurrent() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current != nil && s.current.Track.Status.CanAdvance(StatusPlayed) {
		s.current.Track.Status = StatusPlayed
	}
	s.current = nil
	s.paused = false
	s.position = 0
}

// HasCurrent сообщает, есть ли активный трек
func (s *State) HasCurrent() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.current != nil
}

// Current возвращает копию текущего трека с учетом времени
func (s *State) Current() (NowPlaying, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current == nil {
		return NowPlaying{}, false
	}
	return *s.current, true
}

// SetPaused обновляет флаг паузы и учет времени текущего трека
func (s *State) SetPaused(paused bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.paused = paused
	if s.current == nil {
		return
	}
	if paused {
		s.current.markPaused()
	} else {
		s.current.markResumed()
	}
}

// Paused возвращает состояние паузы
func (s *State) Paused() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.paused
}

// SetVolume сохраняет громкость, обрезая значение до диапазона 0-100
func (s *State) SetVolume(level int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.volume = clampVolume(level)
}

// Volume возвращает текущую громкость
func (s *State) Volume() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.volume
}

// SetFeatures сохраняет свежий снимок характеристик звука
func (s *State) SetFeatures(f analyzer.Features) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.features = f
}

// SetPosition сохраняет позицию воспроизведения, полученную от плеера
func (s *State) SetPosition(pos time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.position = pos
}

// Position возвращает последнюю известную позицию воспроизведения
func (s *State) Position() time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.position
}

// SetStatusMessage устанавливает сообщение строки состояния
// (загрузка, ошибки); пустая строка убирает сообщение
func (s *State) SetStatusMessage(msg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.statusMessage = msg
}

// SetAgent обновляет отображаемую активность агента
func (s *State) SetAgent(activity AgentActivity, tool string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.agentActivity = activity
	s.agentTool = tool
}

// SetProgressArea запоминает кликабельную область прогресс-бара,
// вычисленную слоем отрисовки
func (s *State) SetProgressArea(area ProgressArea) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.progressArea = &area
}

// ProgressClick переводит клик мыши в долю прогресс-бара.
// Возвращает false, если клик мимо области или область еще не известна.
func (s *State) ProgressClick(row, col int) (float64, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.progressArea == nil || s.current == nil {
		return 0, false
	}
	a := s.progressArea
	if row != a.Row || col < a.ColStart || col >= a.ColEnd || a.ColEnd <= a.ColStart {
		return 0, false
	}
	return float64(col-a.ColStart) / float64(a.ColEnd-a.ColStart), true
}

// MoveCursorUp двигает курсор активной панели вверх
func (s *State) MoveCursorUp() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch s.focused {
	case PanelLibrary:
		if s.libraryCursor > 0 {
			s.libraryCursor--
		}
	case PanelQueue:
		if s.queueCursor > 0 {
			s.queueCursor--
		}
	}
}

// MoveCursorDown двигает курсор активной панели вниз
func (s *State) MoveCursorDown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch s.focused {
	case PanelLibrary:
		if len(s.library) > 0 && s.libraryCursor < len(s.library)-1 {
			s.libraryCursor++
		}
	case PanelQueue:
		if len(s.queue) > 0 && s.queueCursor < len(s.queue)-1 {
			s.queueCursor++
		}
	}
}

// FocusLibrary переводит фокус на панель библиотеки
func (s *State) FocusLibrary() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.focused = PanelLibrary
}

// FocusQueue переводит фокус на панель очереди
func (s *State) FocusQueue() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.focused = PanelQueue
}

// Focused возвращает активную панель
func (s *State) Focused() Panel {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.focused
}

// Cursor возвращает позицию курсора активной панели
func (s *State) Cursor() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.focused == PanelQueue {
		return s.queueCursor
	}
	return s.libraryCursor
}

// Quit взводит флаг завершения приложения
func (s *State) Quit() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.shouldQuit = true
}

// ShouldQuit сообщает, запрошено ли завершение
func (s *State) ShouldQuit() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.shouldQuit
}

// clampCursors прижимает курсоры к границам коллекций.
// Вызывается после каждого удаления; блокировка должна быть уже взята.
func (s *State) clampCursors() {
	if len(s.library) == 0 {
		s.libraryCursor = 0
	} else if s.libraryCursor > len(s.library)-1 {
		s.libraryCursor = len(s.library) - 1
	}
	if len(s.queue) == 0 {
		s.queueCursor = 0
	} else if s.queueCursor > len(s.queue)-1 {
		s.queueCursor = len(s.queue) - 1
	}
}

func clampVolume(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
