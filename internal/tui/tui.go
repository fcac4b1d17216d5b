// Package tui содержит текстовый интерфейс плеера: единственный экран
// с визуализатором, текущим треком, библиотекой, очередью и строкой ввода
package tui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-vibeplay/internal/agent"
	"github.com/hazadus/go-vibeplay/internal/session"
	"github.com/hazadus/go-vibeplay/internal/state"
)

// tickInterval — период главного цикла: движок сессии и перерисовка
const tickInterval = 50 * time.Millisecond

// seekStep — шаг перемотки клавишами f/b
const seekStep = 10 * time.Second

// volumeStep — шаг изменения громкости клавишами +/-
const volumeStep = 5

// tickMsg приходит каждый тик главного цикла
type tickMsg time.Time

// Model — модель Bubble Tea для главного экрана плеера
type Model struct {
	ctx    context.Context
	state  *state.State
	engine *session.Engine
	agent  *agent.Agent

	input   textinput.Model
	editing bool

	width  int
	height int
}

// NewModel создает модель главного экрана
func NewModel(ctx context.Context, st *state.State, engine *session.Engine, ag *agent.Agent) *Model {
	input := textinput.New()
	input.Placeholder = "вставьте ссылку или опишите настроение..."
	input.CharLimit = 200

	return &Model{
		ctx:    ctx,
		state:  st,
		engine: engine,
		agent:  ag,
		input:  input,
	}
}

// Init запускает главный цикл
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Один шаг оркестрации за тик; выход проверяем после шага
		m.engine.Tick()
		if m.state.ShouldQuit() {
			return m, tea.Quit
		}
		return m, tick()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.engine.HandleProgressClick(msg.Y, msg.X)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey обрабатывает нажатие клавиши с учетом режима ввода
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C выходит из любого режима
	if msg.Type == tea.KeyCtrlC {
		m.state.Quit()
		return m, tea.Quit
	}

	// Tab переключает режим ввода в обе стороны
	if msg.Type == tea.KeyTab {
		m.setEditing(!m.editing)
		return m, nil
	}

	if m.editing {
		return m.handleEditingKey(msg)
	}
	return m.handleNormalKey(msg)
}

// handleEditingKey обрабатывает клавиши в режиме ввода
func (m *Model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.setEditing(false)
		return m, nil

	case tea.KeyEnter:
		text := m.input.Value()
		m.input.Reset()
		m.setEditing(false)
		if text != "" {
			m.submitToAgent(text)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleNormalKey обрабатывает клавиши в обычном режиме
func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "i", "/":
		m.setEditing(true)

	case "q":
		m.state.Quit()
		return m, tea.Quit

	case "p":
		if m.state.Paused() {
			m.state.Enqueue(state.ResumeCommand{})
		} else {
			m.state.Enqueue(state.PauseCommand{})
		}

	case "n":
		m.state.Enqueue(state.SkipCommand{})

	case "f":
		m.engine.SeekBy(seekStep)

	case "b":
		m.engine.SeekBy(-seekStep)

	case "+", "=":
		m.state.Enqueue(state.SetVolumeCommand{Level: m.state.Volume() + volumeStep})

	case "-":
		m.state.Enqueue(state.SetVolumeCommand{Level: m.state.Volume() - volumeStep})

	case "up":
		m.state.MoveCursorUp()

	case "down":
		m.state.MoveCursorDown()

	case "left":
		m.state.FocusLibrary()

	case "right":
		m.state.FocusQueue()

	case " ":
		m.handleSpace()
	}

	return m, nil
}

// handleSpace пытается запустить выбранный трек;
// если играть нечего, переключает паузу
func (m *Model) handleSpace() {
	track, ok := m.selectedTrack()
	if ok && track.Status == state.StatusReady && track.FilePath != "" {
		m.state.Enqueue(state.PlayFileCommand{
			Path:     track.FilePath,
			Title:    track.Title,
			Artist:   track.Artist,
			URL:      track.URL,
			Duration: track.Duration,
		})
		return
	}

	if m.state.HasCurrent() {
		if m.state.Paused() {
			m.state.Enqueue(state.ResumeCommand{})
		} else {
			m.state.Enqueue(state.PauseCommand{})
		}
	}
}

// selectedTrack возвращает трек под курсором активной панели
func (m *Model) selectedTrack() (state.Track, bool) {
	if m.state.Focused() == state.PanelQueue {
		return m.state.QueueTrack(m.state.Cursor())
	}
	return m.state.LibraryTrack(m.state.Cursor())
}

// setEditing переключает режим строки ввода
func (m *Model) setEditing(editing bool) {
	m.editing = editing
	if editing {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// submitToAgent отдает ввод агенту в фоновой горутине:
// интерфейс продолжает обновляться, пока агент думает
func (m *Model) submitToAgent(text string) {
	go func() {
		if err := m.agent.HandleInput(m.ctx, text); err != nil {
			log.Printf("Ошибка агента: %v", err)
		}
	}()
}

// Run запускает интерфейс и блокируется до выхода
func Run(ctx context.Context, st *state.State, engine *session.Engine, ag *agent.Agent) error {
	model := NewModel(ctx, st, engine, ag)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
