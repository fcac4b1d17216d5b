// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"

	"github.com/hazadus/go-vibeplay/internal/analyzer"
)

// Ошибки воспроизведения
var (
	ErrOpen   = errors.New("не удалось открыть файл")
	ErrDecode = errors.New("не удалось декодировать файл")
)

// Player управляет воспроизведением локальных файлов через звуковое
// устройство. Реализует контроллер для движка сессии.
type Player struct {
	mutex         sync.Mutex
	isInitialized bool
	speakerRate   beep.SampleRate // Частота, с которой инициализирован speaker

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	gain     *effects.Gain

	relay    *analyzer.Relay
	analyzer *analyzer.Analyzer

	volume int
	total  time.Duration

	// Флаг завершения текущего конвейера. На каждый запуск создается свой,
	// чтобы колбэк прошлого трека не пометил завершенным новый.
	done *atomic.Bool
}

// NewPlayer создает плеер с заданной начальной громкостью
func NewPlayer(volume int) *Player {
	return &Player{
		volume: clampVolume(volume),
		done:   &atomic.Bool{},
	}
}

// Play начинает воспроизведение локального файла
func (p *Player) Play(path string, duration time.Duration) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Останавливаем текущее воспроизведение, если есть
	p.stopInternal()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}

	// Декодируем MP3
	streamer, format, err := mp3.Decode(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Инициализируем speaker (только один раз, на частоте первого файла)
	if !p.isInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			file.Close()
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.speakerRate = format.SampleRate
		p.isInitialized = true
	}

	p.file = file
	p.streamer = streamer
	p.format = format
	p.total = duration

	// Ретранслятор снимает сэмплы до ресэмплинга,
	// поэтому анализатор работает на частоте файла
	buffer := analyzer.NewSampleBuffer()
	p.relay = analyzer.NewRelay(streamer, buffer)
	p.analyzer = analyzer.NewAnalyzer(buffer, int(format.SampleRate))

	var stream beep.Streamer = p.relay
	if format.SampleRate != p.speakerRate {
		stream = beep.Resample(4, format.SampleRate, p.speakerRate, stream)
	}

	p.ctrl = &beep.Ctrl{Streamer: stream}
	p.gain = &effects.Gain{
		Streamer: p.ctrl,
		Gain:     gainFor(p.volume),
	}

	done := &atomic.Bool{}
	p.done = done
	speaker.Play(beep.Seq(p.gain, beep.Callback(func() {
		done.Store(true)
	})))

	return nil
}

// Pause приостанавливает воспроизведение; повторный вызов ничего не меняет
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Resume возобновляет воспроизведение; повторный вызов ничего не меняет
func (p *Player) Resume() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	}
}

// Stop останавливает воспроизведение и освобождает ресурсы
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
		p.gain = nil
	}

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	if p.file != nil {
		p.file.Close()
		p.file = nil
	}

	p.relay = nil
	p.analyzer = nil
	p.done.Store(true)
}

// SetVolume устанавливает громкость (0-100) с линейной шкалой
func (p *Player) SetVolume(level int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.volume = clampVolume(level)
	if p.gain != nil {
		speaker.Lock()
		p.gain.Gain = gainFor(p.volume)
		speaker.Unlock()
	}
}

// Seek перематывает текущий трек на заданную позицию.
// Перемотка необязательная: при ошибке пишем предупреждение в лог
// и продолжаем играть с прежней позиции.
func (p *Player) Seek(pos time.Duration) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.streamer == nil {
		return
	}

	speaker.Lock()
	sample := p.format.SampleRate.N(pos)
	if sample < 0 {
		sample = 0
	}
	if max := p.streamer.Len(); max > 0 && sample >= max {
		sample = max - 1
	}
	err := p.streamer.Seek(sample)
	if err == nil && p.relay != nil {
		// После скачка позиции накопленные сэмплы больше не актуальны
		p.relay.Reset()
	}
	speaker.Unlock()

	if err != nil {
		log.Printf("Предупреждение: не удалось перемотать на %v: %v", pos, err)
	}
}

// Position возвращает текущую позицию воспроизведения
func (p *Player) Position() time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos
}

// IsEmpty сообщает, свободен ли плеер: ничего не запущено
// или текущий трек доиграл до конца
func (p *Player) IsEmpty() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.ctrl == nil || p.done.Load()
}

// Features возвращает свежий снимок характеристик звука
func (p *Player) Features() analyzer.Features {
	p.mutex.Lock()
	a := p.analyzer
	p.mutex.Unlock()

	if a == nil {
		return analyzer.Features{}
	}
	return a.Analyze()
}

// Volume возвращает текущую громкость
func (p *Player) Volume() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.volume
}

// gainFor переводит громкость 0-100 в линейный коэффициент усиления:
// 0 дает тишину, 100 — исходную громкость
func gainFor(volume int) float64 {
	return float64(volume)/100.0 - 1.0
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
