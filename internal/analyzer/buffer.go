// Package analyzer содержит компоненты для анализа аудиопотока в реальном времени:
// перехват сэмплов из тракта воспроизведения и извлечение спектральных характеристик
package analyzer

import "sync"

const (
	// flushInterval — размер локальной партии сэмплов, после которого
	// партия сбрасывается в общий буфер
	flushInterval = 512
	// maxBufferSamples — предельный размер общего буфера
	// (около 0.37 секунды при 44.1 кГц)
	maxBufferSamples = 16384
)

// SampleBuffer — ограниченный буфер моно-сэмплов, совместно используемый
// ретранслятором (писатель) и анализатором (читатель). Защищен собственным
// мьютексом, независимым от мьютекса состояния сессии, чтобы аудио-тракт
// не конкурировал за блокировку с UI-трактом.
type SampleBuffer struct {
	mutex   sync.Mutex
	samples []float64
}

// NewSampleBuffer создает новый буфер сэмплов
func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{
		samples: make([]float64, 0, maxBufferSamples),
	}
}

// Append добавляет сэмплы в конец буфера и отбрасывает самые старые,
// если размер превысил лимит
func (b *SampleBuffer) Append(samples []float64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.samples = append(b.samples, samples...)
	if over := len(b.samples) - maxBufferSamples; over > 0 {
		b.samples = append(b.samples[:0], b.samples[over:]...)
	}
}

// Latest возвращает копию последних n сэмплов.
// Если сэмплов меньше n, возвращает nil.
func (b *SampleBuffer) Latest(n int) []float64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if len(b.samples) < n {
		return nil
	}
	out := make([]float64, n)
	copy(out, b.samples[len(b.samples)-n:])
	return out
}

// Len возвращает текущее количество сэмплов в буфере
func (b *SampleBuffer) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.samples)
}

// Clear очищает буфер
func (b *SampleBuffer) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.samples = b.samples[:0]
}
