// Package session связывает разделяемое состояние с контроллером
// воспроизведения: применяет команды и автоматически продвигает очередь
package session

import (
	"fmt"
	"log"
	"time"

	"github.com/hazadus/go-vibeplay/internal/analyzer"
	"github.com/hazadus/go-vibeplay/internal/state"
)

// Controller — интерфейс контроллера воспроизведения.
// Реализуется плеером на базе beep.
type Controller interface {
	Play(path string, duration time.Duration) error
	Pause()
	Resume()
	Stop()
	SetVolume(level int)
	Seek(pos time.Duration)
	Position() time.Duration
	IsEmpty() bool
	Features() analyzer.Features
}

// Engine выполняет один шаг оркестрации за тик интерфейса
type Engine struct {
	state      *state.State
	controller Controller
}

// NewEngine создает движок сессии
func NewEngine(st *state.State, controller Controller) *Engine {
	return &Engine{
		state:      st,
		controller: controller,
	}
}

// Tick выполняет один шаг: обновляет позицию и характеристики звука,
// применяет накопленные команды, затем продвигает очередь.
// Вызывается только главным циклом.
func (e *Engine) Tick() {
	e.updatePlayback()
	e.applyCommands()
	e.autoAdvance()
}

// updatePlayback снимает с контроллера позицию и характеристики звука
func (e *Engine) updatePlayback() {
	if e.controller.IsEmpty() {
		return
	}
	e.state.SetPosition(e.controller.Position())
	e.state.SetFeatures(e.controller.Features())
}

// applyCommands применяет накопленные команды строго в порядке FIFO
func (e *Engine) applyCommands() {
	for _, cmd := range e.state.DrainCommands() {
		switch c := cmd.(type) {
		case state.PlayFileCommand:
			e.playFile(c)
		case state.SkipCommand:
			e.controller.Stop()
			e.state.ClearCurrent()
		case state.PauseCommand:
			e.controller.Pause()
			e.state.SetPaused(true)
		case state.ResumeCommand:
			e.controller.Resume()
			e.state.SetPaused(false)
		case state.SetVolumeCommand:
			e.state.SetVolume(c.Level)
			e.controller.SetVolume(e.state.Volume())
		}
	}
}

// playFile запускает воспроизведение файла по команде.
// При ошибке текущий трек не меняется: пишем в лог и в строку состояния.
func (e *Engine) playFile(cmd state.PlayFileCommand) {
	e.controller.Stop()
	if err := e.controller.Play(cmd.Path, cmd.Duration); err != nil {
		log.Printf("Ошибка воспроизведения %s: %v", cmd.Path, err)
		e.state.SetStatusMessage(fmt.Sprintf("Ошибка воспроизведения: %v", err))
		e.state.ClearCurrent()
		return
	}

	track := state.Track{
		Title:    cmd.Title,
		Artist:   cmd.Artist,
		URL:      cmd.URL,
		FilePath: cmd.Path,
		Duration: cmd.Duration,
		Status:   state.StatusReady,
	}
	e.state.SetCurrent(track)
	e.state.SetStatusMessage("")
}

// autoAdvance запускает следующий готовый трек из очереди, когда контроллер
// свободен. Неготовые записи пропускаются на месте и остаются в очереди;
// текущий трек сбрасывается, только если готовых записей нет вообще.
func (e *Engine) autoAdvance() {
	if !e.controller.IsEmpty() {
		return
	}

	track, ok := e.state.PopReadySong()
	if !ok {
		if !e.state.HasReadySong() && e.state.HasCurrent() {
			e.state.ClearCurrent()
		}
		return
	}

	if err := e.controller.Play(track.FilePath, track.Duration); err != nil {
		log.Printf("Ошибка воспроизведения из очереди %s: %v", track.FilePath, err)
		e.state.SetStatusMessage(fmt.Sprintf("Ошибка воспроизведения: %v", err))
		e.state.ClearCurrent()
		return
	}
	e.state.SetCurrent(track)
	e.state.SetStatusMessage("")
}

// SeekBy перематывает текущий трек на delta относительно текущей позиции
func (e *Engine) SeekBy(delta time.Duration) {
	np, ok := e.state.Current()
	if !ok {
		return
	}

	target := e.controller.Position() + delta
	if target < 0 {
		target = 0
	}
	if np.Track.Duration > 0 && target > np.Track.Duration {
		target = np.Track.Duration
	}
	e.controller.Seek(target)
	e.state.SetPosition(target)
}

// HandleProgressClick перематывает трек по клику мыши на прогресс-баре
func (e *Engine) HandleProgressClick(row, col int) {
	frac, ok := e.state.ProgressClick(row, col)
	if !ok {
		return
	}
	np, ok := e.state.Current()
	if !ok || np.Track.Duration <= 0 {
		return
	}

	target := time.Duration(frac * float64(np.Track.Duration))
	e.controller.Seek(target)
	e.state.SetPosition(target)
}
