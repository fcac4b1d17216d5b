package analyzer

import "github.com/gopxl/beep"

// Relay прозрачно оборачивает поток декодированных сэмплов: каждый сэмпл,
// запрошенный динамиком, дополнительно попадает в локальную партию, а при
// ее заполнении сводится в моно и сбрасывается в общий буфер. Работа по
// сведению амортизирована и никогда не блокируется на анализаторе, поэтому
// заметной задержки в воспроизведение не вносит.
type Relay struct {
	inner  beep.Streamer
	buffer *SampleBuffer
	batch  []float64
}

// NewRelay создает ретранслятор поверх потока сэмплов
func NewRelay(inner beep.Streamer, buffer *SampleBuffer) *Relay {
	return &Relay{
		inner:  inner,
		buffer: buffer,
		batch:  make([]float64, 0, flushInterval),
	}
}

// Stream реализует интерфейс beep.Streamer
func (r *Relay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = r.inner.Stream(samples)
	for i := 0; i < n; i++ {
		// Сводим стереопару в моно усреднением каналов
		r.batch = append(r.batch, (samples[i][0]+samples[i][1])*0.5)
		if len(r.batch) >= flushInterval {
			r.flush()
		}
	}
	return n, ok
}

// Err реализует интерфейс beep.Streamer
func (r *Relay) Err() error {
	return r.inner.Err()
}

// Reset сбрасывает локальную партию и общий буфер.
// Вызывается при перемотке, чтобы устаревший спектр
// не просачивался через разрыв потока.
func (r *Relay) Reset() {
	r.batch = r.batch[:0]
	r.buffer.Clear()
}

func (r *Relay) flush() {
	if len(r.batch) == 0 {
		return
	}
	r.buffer.Append(r.batch)
	r.batch = r.batch[:0]
}
