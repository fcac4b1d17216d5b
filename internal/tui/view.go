package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vibeplay/internal/state"
	"github.com/hazadus/go-vibeplay/internal/utils"
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	borderActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("5"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	trackTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	panelTitleActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6"))

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	actingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	progressPrefixStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2"))

	progressFilledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("5"))

	progressKnobStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("7"))

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	modeInputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("5"))

	modeControlsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("6"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	volumeBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))
)

// shadeChars — символы заливки визуализатора по нарастанию интенсивности
var shadeChars = []string{"░", "▒", "▓", "█"}

// barColors — цвета столбцов визуализатора от тихого к громкому
var barColors = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
}

// View отрисовывает экран целиком: строка ввода, визуализатор с текущим
// треком слева, библиотека и очередь справа, строка состояния внизу
func (m *Model) View() string {
	if m.width < 20 || m.height < 10 {
		return ""
	}

	snap := m.state.Snapshot()

	inputBar := m.renderInputBar(snap)

	// Раскладка: строка ввода занимает 3 строки, строка состояния одну
	mainHeight := m.height - 4
	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth

	vizHeight := mainHeight - 4
	if vizHeight < 1 {
		vizHeight = 1
	}

	visualizer := m.renderVisualizer(snap, leftWidth, vizHeight)
	nowPlaying := m.renderNowPlaying(snap, leftWidth, 3+vizHeight)
	left := lipgloss.JoinVertical(lipgloss.Left, visualizer, nowPlaying)

	libHeight := (mainHeight + 1) / 2
	library := m.renderLibrary(snap, rightWidth, libHeight)
	queue := m.renderQueue(snap, rightWidth, mainHeight-libHeight)
	right := lipgloss.JoinVertical(lipgloss.Left, library, queue)

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	statusBar := m.renderStatusBar(snap)

	return lipgloss.JoinVertical(lipgloss.Left, inputBar, main, statusBar)
}

// renderInputBar отрисовывает строку ввода с индикатором активности агента
func (m *Model) renderInputBar(snap state.Snapshot) string {
	var indicator string
	switch snap.AgentActivity {
	case state.AgentThinking:
		indicator = thinkingStyle.Render("* думаю... ")
	case state.AgentActing:
		indicator = actingStyle.Render(fmt.Sprintf("* %s... ", snap.AgentTool))
	default:
		if m.editing {
			indicator = progressPrefixStyle.Render("> ")
		} else {
			indicator = dimStyle.Render("> ")
		}
	}

	var text string
	if m.editing {
		text = m.input.View()
	} else if m.input.Value() == "" {
		text = dimStyle.Render("нажмите Tab для ввода или используйте клавиши ниже")
	} else {
		text = dimStyle.Render(m.input.Value())
	}

	style := borderStyle
	if m.editing {
		style = borderActiveStyle
	}

	content := lipgloss.NewStyle().Width(m.width - 2).Render(indicator + text)
	return style.Render(content)
}

// renderVisualizer отрисовывает спектральные столбцы текущего трека.
// Когда трек не играет, по центру выводится подсказка или сообщение статуса.
func (m *Model) renderVisualizer(snap state.Snapshot, width, height int) string {
	if snap.Current == nil {
		msg := "вставьте ссылку или опишите настроение"
		style := dimStyle
		if snap.StatusMessage != "" {
			msg = snap.StatusMessage
			style = statusWarnStyle
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, style.Render(msg))
	}

	values := m.barValues(snap, width)

	var b strings.Builder
	for row := 0; row < height; row++ {
		// Доля высоты, которую должен перекрыть столбец, чтобы
		// закрасить эту строку; строки считаются сверху вниз
		rowFactor := 1.0 - float64(row)/float64(height)
		for col := 0; col < width; col++ {
			val := values[col]
			if val < rowFactor {
				b.WriteString(" ")
				continue
			}
			shade := int((val - rowFactor) * 4.0)
			if shade > len(shadeChars)-1 {
				shade = len(shadeChars) - 1
			}
			b.WriteString(barStyle(val).Render(shadeChars[shade]))
		}
		if row < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// barStyle подбирает цвет столбца по его величине
func barStyle(val float64) lipgloss.Style {
	switch {
	case val > 0.8:
		return barColors[4]
	case val > 0.6:
		return barColors[3]
	case val > 0.4:
		return barColors[2]
	case val > 0.2:
		return barColors[1]
	default:
		return barColors[0]
	}
}

// barValues строит высоты столбцов из характеристик звука: низкие частоты
// слева, высокие справа, с плавным переходом между полосами. Легкая рябь
// по времени оживляет картинку, бит подбрасывает все столбцы разом.
func (m *Model) barValues(snap state.Snapshot, width int) []float64 {
	f := snap.Features
	now := float64(time.Now().UnixMilli()) / 1000.0

	values := make([]float64, width)
	if snap.Paused {
		return values
	}

	for col := 0; col < width; col++ {
		x := float64(col) / float64(width)

		// Кусочно-линейная интерполяция бас -> середина -> верх
		var base float64
		if x < 0.5 {
			t := x / 0.5
			base = f.Bass*(1-t) + f.Mid*t
		} else {
			t := (x - 0.5) / 0.5
			base = f.Mid*(1-t) + f.Treble*t
		}

		ripple := 0.85 + 0.15*math.Sin(x*9.0+now*5.0)
		val := base * ripple
		if f.Beat {
			val += 0.15
		}
		if val > 1.0 {
			val = 1.0
		}
		if val < 0 {
			val = 0
		}
		values[col] = val
	}
	return values
}

// renderNowPlaying отрисовывает название текущего трека и прогресс-бар,
// запоминая кликабельную область для перемотки мышью. topRow — экранная
// строка, с которой начинается этот блок.
func (m *Model) renderNowPlaying(snap state.Snapshot, width, topRow int) string {
	if snap.Current == nil {
		return strings.Repeat("\n", 3)
	}

	track := snap.Current.Track

	title := "  " + track.Title
	line := trackTitleStyle.Render(utils.TruncateString(title, width))
	if track.Artist != "" && len(title)+len(track.Artist)+3 < width {
		line = trackTitleStyle.Render(title) + dimStyle.Render(" - "+track.Artist)
	}

	duration := track.Duration
	elapsed := snap.Position
	if duration > 0 && elapsed > duration {
		elapsed = duration
	}
	var progress float64
	if duration > 0 {
		progress = float64(elapsed) / float64(duration)
	}

	playIcon := ">>"
	if snap.Paused {
		playIcon = "||"
	}
	prefix := fmt.Sprintf("  [%s] ", playIcon)
	timeStr := fmt.Sprintf(" %s / %s", utils.FormatClock(elapsed), utils.FormatClock(duration))

	barWidth := width - len(prefix) - 1 - len(timeStr)
	if barWidth < 0 {
		barWidth = 0
	}
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	// Прогресс-бар стоит на второй строке блока
	m.state.SetProgressArea(state.ProgressArea{
		Row:      topRow + 1,
		ColStart: len(prefix),
		ColEnd:   len(prefix) + barWidth,
	})

	progressLine := progressPrefixStyle.Render(prefix) +
		progressFilledStyle.Render(strings.Repeat("━", filled)) +
		progressKnobStyle.Render("●") +
		dimStyle.Render(strings.Repeat("━", barWidth-filled)) +
		timeStr

	return lipgloss.JoinVertical(lipgloss.Left, line, progressLine, "")
}

// renderLibrary отрисовывает панель библиотеки
func (m *Model) renderLibrary(snap state.Snapshot, width, height int) string {
	focused := snap.Focused == state.PanelLibrary

	titleStyle := panelTitleStyle
	if focused {
		titleStyle = panelTitleActiveStyle
	}
	lines := []string{titleStyle.Render(" БИБЛИОТЕКА ")}

	if len(snap.Library) == 0 {
		lines = append(lines, dimStyle.Render("  пока пусто"))
	} else {
		visible := height - 1
		if visible < 1 {
			visible = 1
		}
		offset := scrollOffset(snap.LibraryCursor, visible)

		for i := offset; i < len(snap.Library) && i < offset+visible; i++ {
			track := snap.Library[i]
			prefix := "  "
			style := trackTitleStyle
			if i == snap.LibraryCursor {
				prefix = "> "
				if focused {
					style = selectedStyle
				}
			}
			lines = append(lines, style.Render(prefix+utils.TruncateString(track.Title, width-4)))
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// renderQueue отрисовывает панель очереди: по две строки на трек,
// название и статус
func (m *Model) renderQueue(snap state.Snapshot, width, height int) string {
	focused := snap.Focused == state.PanelQueue

	titleStyle := panelTitleStyle
	if focused {
		titleStyle = panelTitleActiveStyle
	}
	lines := []string{titleStyle.Render(" ДАЛЬШЕ ")}

	if len(snap.Queue) == 0 {
		lines = append(lines, dimStyle.Render("  очередь пуста"))
	} else {
		visible := (height - 1) / 2
		if visible < 1 {
			visible = 1
		}
		offset := scrollOffset(snap.QueueCursor, visible)

		for i := offset; i < len(snap.Queue) && i < offset+visible; i++ {
			track := snap.Queue[i]
			prefix := "  "
			style := trackTitleStyle
			if i == snap.QueueCursor {
				prefix = "> "
				if focused {
					style = selectedStyle
				}
			}
			number := dimStyle.Render(fmt.Sprintf("%s%d. ", prefix, i+1))
			title := style.Render(utils.TruncateString(track.Title, width-8))
			lines = append(lines, number+title)
			lines = append(lines, statusLineStyle(track.Status).Render("     "+track.Status.String()))
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// statusLineStyle подбирает цвет для строки статуса трека в очереди
func statusLineStyle(s state.Status) lipgloss.Style {
	switch s {
	case state.StatusDownloading:
		return thinkingStyle
	case state.StatusReady:
		return progressPrefixStyle
	case state.StatusPlaying:
		return progressFilledStyle
	default:
		return dimStyle
	}
}

// renderStatusBar отрисовывает строку состояния: подсказки по клавишам
// и индикатор громкости
func (m *Model) renderStatusBar(snap state.Snapshot) string {
	var b strings.Builder

	hint := func(key, label string) {
		b.WriteString(keyStyle.Render(" [" + key + "]"))
		b.WriteString(dimStyle.Render(" " + label))
	}

	if m.editing {
		b.WriteString(modeInputStyle.Render(" ВВОД "))
		hint("Esc", "управление")
		hint("Enter", "отправить")
	} else {
		b.WriteString(modeControlsStyle.Render(" УПРАВЛЕНИЕ "))
		hint("Space", "играть")
		hint("↑↓", "выбор")
		hint("←→", "панель")
		hint("Tab", "ввод")
		hint("n", "дальше")
		hint("f/b", "перемотка")
		hint("+/-", "громкость")
		hint("q", "выход")
	}

	volFilled := snap.Volume * 6 / 100
	b.WriteString("    гр ")
	b.WriteString(volumeBarStyle.Render(strings.Repeat("█", volFilled) + strings.Repeat("░", 6-volFilled)))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %d%%", snap.Volume)))

	return b.String()
}

// scrollOffset возвращает смещение прокрутки, удерживающее курсор на экране
func scrollOffset(cursor, visible int) int {
	if cursor >= visible {
		return cursor - visible + 1
	}
	return 0
}
