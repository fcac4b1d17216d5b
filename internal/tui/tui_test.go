// Package tui содержит тесты для главного экрана плеера
package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-vibeplay/internal/analyzer"
	"github.com/hazadus/go-vibeplay/internal/session"
	"github.com/hazadus/go-vibeplay/internal/state"
)

// fakeController — контроллер-заглушка для тестов интерфейса
type fakeController struct {
	playing  bool
	position time.Duration
	seeks    []time.Duration
	played   []string
}

func (f *fakeController) Play(path string, duration time.Duration) error {
	f.playing = true
	f.played = append(f.played, path)
	return nil
}

func (f *fakeController) Pause()                      {}
func (f *fakeController) Resume()                     {}
func (f *fakeController) Stop()                       { f.playing = false }
func (f *fakeController) SetVolume(level int)         {}
func (f *fakeController) Seek(pos time.Duration)      { f.seeks = append(f.seeks, pos) }
func (f *fakeController) Position() time.Duration     { return f.position }
func (f *fakeController) IsEmpty() bool               { return !f.playing }
func (f *fakeController) Features() analyzer.Features { return analyzer.Features{} }

func newTestModel(t *testing.T) (*Model, *state.State, *fakeController) {
	t.Helper()

	st := state.New(70)
	controller := &fakeController{}
	engine := session.NewEngine(st, controller)
	model := NewModel(context.Background(), st, engine, nil)
	model.width = 120
	model.height = 40
	return model, st, controller
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQuitKey(t *testing.T) {
	model, st, _ := newTestModel(t)

	_, cmd := model.Update(keyMsg("q"))

	if !st.ShouldQuit() {
		t.Error("Клавиша q должна взводить флаг завершения")
	}
	if cmd == nil {
		t.Error("Ожидалась команда tea.Quit")
	}
}

func TestPauseTogglesCommand(t *testing.T) {
	model, st, _ := newTestModel(t)

	model.Update(keyMsg("p"))

	cmds := st.DrainCommands()
	if len(cmds) != 1 {
		t.Fatalf("Ожидалась одна команда, получено: %d", len(cmds))
	}
	if _, ok := cmds[0].(state.PauseCommand); !ok {
		t.Errorf("Ожидалась команда паузы, получено: %T", cmds[0])
	}

	// В состоянии паузы та же клавиша дает команду продолжения
	st.SetPaused(true)
	model.Update(keyMsg("p"))

	cmds = st.DrainCommands()
	if len(cmds) != 1 {
		t.Fatalf("Ожидалась одна команда, получено: %d", len(cmds))
	}
	if _, ok := cmds[0].(state.ResumeCommand); !ok {
		t.Errorf("Ожидалась команда продолжения, получено: %T", cmds[0])
	}
}

func TestSkipKey(t *testing.T) {
	model, st, _ := newTestModel(t)

	model.Update(keyMsg("n"))

	cmds := st.DrainCommands()
	if len(cmds) != 1 {
		t.Fatalf("Ожидалась одна команда, получено: %d", len(cmds))
	}
	if _, ok := cmds[0].(state.SkipCommand); !ok {
		t.Errorf("Ожидалась команда пропуска, получено: %T", cmds[0])
	}
}

func TestVolumeKeys(t *testing.T) {
	model, st, _ := newTestModel(t)

	model.Update(keyMsg("+"))
	model.Update(keyMsg("-"))

	cmds := st.DrainCommands()
	if len(cmds) != 2 {
		t.Fatalf("Ожидалось две команды, получено: %d", len(cmds))
	}
	up, ok := cmds[0].(state.SetVolumeCommand)
	if !ok || up.Level != 75 {
		t.Errorf("Ожидалась команда громкости 75, получено: %+v", cmds[0])
	}
	down, ok := cmds[1].(state.SetVolumeCommand)
	if !ok || down.Level != 65 {
		t.Errorf("Ожидалась команда громкости 65, получено: %+v", cmds[1])
	}
}

func TestEditingModeToggle(t *testing.T) {
	model, _, _ := newTestModel(t)

	if model.editing {
		t.Error("Режим ввода не должен быть активен изначально")
	}

	model.Update(keyMsg("tab"))
	if !model.editing {
		t.Error("Tab должен включать режим ввода")
	}

	model.Update(keyMsg("esc"))
	if model.editing {
		t.Error("Esc должен выключать режим ввода")
	}

	model.Update(keyMsg("i"))
	if !model.editing {
		t.Error("Клавиша i должна включать режим ввода")
	}
}

func TestEditingModeCapturesKeys(t *testing.T) {
	model, st, _ := newTestModel(t)

	model.Update(keyMsg("tab"))
	model.Update(keyMsg("p"))
	model.Update(keyMsg("n"))

	// В режиме ввода клавиши попадают в текст, а не в управление плеером
	if cmds := st.DrainCommands(); len(cmds) != 0 {
		t.Errorf("В режиме ввода команды не должны создаваться, получено: %d", len(cmds))
	}
	if model.input.Value() != "pn" {
		t.Errorf("Ожидался текст 'pn', получено: %q", model.input.Value())
	}
}

func TestSpacePlaysSelectedReadyTrack(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.PushLibrary(state.Track{
		Title:    "Test Track",
		URL:      "https://example.com/track",
		FilePath: "/tmp/track.mp3",
		Duration: 3 * time.Minute,
		Status:   state.StatusReady,
	})

	model.Update(keyMsg(" "))

	cmds := st.DrainCommands()
	if len(cmds) != 1 {
		t.Fatalf("Ожидалась одна команда, получено: %d", len(cmds))
	}
	play, ok := cmds[0].(state.PlayFileCommand)
	if !ok {
		t.Fatalf("Ожидалась команда воспроизведения, получено: %T", cmds[0])
	}
	if play.Path != "/tmp/track.mp3" {
		t.Errorf("Неожиданный путь: %s", play.Path)
	}
	if play.Title != "Test Track" {
		t.Errorf("Неожиданное название: %s", play.Title)
	}
}

func TestSpaceWithoutSelectionTogglesPause(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.SetCurrent(state.Track{Title: "Current", Status: state.StatusReady})

	model.Update(keyMsg(" "))

	cmds := st.DrainCommands()
	if len(cmds) != 1 {
		t.Fatalf("Ожидалась одна команда, получено: %d", len(cmds))
	}
	if _, ok := cmds[0].(state.PauseCommand); !ok {
		t.Errorf("Ожидалась команда паузы, получено: %T", cmds[0])
	}
}

func TestArrowKeysMoveFocusAndCursor(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.PushQueue(state.Track{Title: "One", URL: "u1"})
	st.PushQueue(state.Track{Title: "Two", URL: "u2"})

	model.Update(keyMsg("right"))
	if st.Focused() != state.PanelQueue {
		t.Error("Стрелка вправо должна переводить фокус на очередь")
	}

	model.Update(keyMsg("down"))
	if st.Cursor() != 1 {
		t.Errorf("Ожидался курсор 1, получено: %d", st.Cursor())
	}

	model.Update(keyMsg("up"))
	if st.Cursor() != 0 {
		t.Errorf("Ожидался курсор 0, получено: %d", st.Cursor())
	}

	model.Update(keyMsg("left"))
	if st.Focused() != state.PanelLibrary {
		t.Error("Стрелка влево должна переводить фокус на библиотеку")
	}
}

func TestSeekKeys(t *testing.T) {
	model, st, controller := newTestModel(t)

	st.SetCurrent(state.Track{
		Title:    "Current",
		Duration: 3 * time.Minute,
		Status:   state.StatusReady,
	})
	controller.position = 60 * time.Second

	model.Update(keyMsg("f"))
	model.Update(keyMsg("b"))

	if len(controller.seeks) != 2 {
		t.Fatalf("Ожидалось две перемотки, получено: %d", len(controller.seeks))
	}
	if controller.seeks[0] != 70*time.Second {
		t.Errorf("Ожидалась перемотка на 70s, получено: %v", controller.seeks[0])
	}
	if controller.seeks[1] != 50*time.Second {
		t.Errorf("Ожидалась перемотка на 50s, получено: %v", controller.seeks[1])
	}
}

func TestMouseClickSeeksOnProgressBar(t *testing.T) {
	model, st, controller := newTestModel(t)

	st.SetCurrent(state.Track{
		Title:    "Current",
		Duration: 100 * time.Second,
		Status:   state.StatusReady,
	})
	st.SetProgressArea(state.ProgressArea{Row: 10, ColStart: 7, ColEnd: 57})

	model.Update(tea.MouseMsg{
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
		X:      32,
		Y:      10,
	})

	if len(controller.seeks) != 1 {
		t.Fatalf("Ожидалась одна перемотка, получено: %d", len(controller.seeks))
	}
	if controller.seeks[0] != 50*time.Second {
		t.Errorf("Ожидалась перемотка на 50s, получено: %v", controller.seeks[0])
	}
}

func TestTickAdvancesEngine(t *testing.T) {
	model, st, controller := newTestModel(t)

	st.PushQueue(state.Track{
		Title:    "Ready Track",
		URL:      "https://example.com/ready",
		FilePath: "/tmp/ready.mp3",
		Status:   state.StatusReady,
	})

	_, cmd := model.Update(tickMsg(time.Now()))

	if len(controller.played) != 1 || controller.played[0] != "/tmp/ready.mp3" {
		t.Errorf("Тик должен запускать готовый трек, получено: %v", controller.played)
	}
	if cmd == nil {
		t.Error("Тик должен планировать следующий тик")
	}
}

func TestTickQuitsWhenRequested(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.Quit()
	_, cmd := model.Update(tickMsg(time.Now()))

	if cmd == nil {
		t.Fatal("Ожидалась команда завершения")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("Ожидался tea.Quit, получено: %v", msg)
	}
}

func TestViewRendersPanels(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.PushLibrary(state.Track{Title: "Library Song", URL: "u1", Status: state.StatusReady})
	st.PushQueue(state.Track{Title: "Queued Song", URL: "u2", Status: state.StatusDownloading})

	view := model.View()

	if !strings.Contains(view, "Library Song") {
		t.Error("Экран должен содержать трек библиотеки")
	}
	if !strings.Contains(view, "Queued Song") {
		t.Error("Экран должен содержать трек очереди")
	}
	if !strings.Contains(view, "загрузка") {
		t.Error("Экран должен показывать статус загрузки")
	}
}

func TestViewRegistersProgressArea(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.SetCurrent(state.Track{
		Title:    "Current Song",
		Duration: 3 * time.Minute,
		Status:   state.StatusReady,
	})

	view := model.View()

	if !strings.Contains(view, "Current Song") {
		t.Error("Экран должен содержать название текущего трека")
	}
	// После отрисовки клик по прогресс-бару должен находить область
	// (строка прогресса: ввод 3 строки + визуализатор + название)
	vizHeight := model.height - 4 - 4
	row := 3 + vizHeight + 1
	if _, ok := st.ProgressClick(row, 10); !ok {
		t.Errorf("Клик по строке %d должен попадать в прогресс-бар", row)
	}
}

func TestViewEmptyOnTinyScreen(t *testing.T) {
	model, _, _ := newTestModel(t)
	model.width = 5
	model.height = 3

	if view := model.View(); view != "" {
		t.Errorf("На крошечном экране ожидалась пустая отрисовка, получено: %q", view)
	}
}

func TestBarValuesBounded(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.SetFeatures(analyzer.Features{Bass: 0.9, Mid: 0.7, Treble: 0.5, Beat: true})
	snap := st.Snapshot()

	values := model.barValues(snap, 60)
	if len(values) != 60 {
		t.Fatalf("Ожидалось 60 столбцов, получено: %d", len(values))
	}
	for i, v := range values {
		if v < 0 || v > 1 {
			t.Errorf("Столбец %d вне диапазона [0, 1]: %f", i, v)
		}
	}
}

func TestBarValuesZeroWhenPaused(t *testing.T) {
	model, st, _ := newTestModel(t)

	st.SetFeatures(analyzer.Features{Bass: 0.9, Mid: 0.7, Treble: 0.5})
	st.SetPaused(true)
	snap := st.Snapshot()

	for i, v := range model.barValues(snap, 10) {
		if v != 0 {
			t.Errorf("На паузе столбец %d должен быть нулевым, получено: %f", i, v)
		}
	}
}

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		cursor   int
		visible  int
		expected int
	}{
		{0, 5, 0},
		{4, 5, 0},
		{5, 5, 1},
		{9, 5, 5},
	}

	for _, test := range tests {
		if got := scrollOffset(test.cursor, test.visible); got != test.expected {
			t.Errorf("scrollOffset(%d, %d) = %d; ожидалось %d",
				test.cursor, test.visible, got, test.expected)
		}
	}
}
