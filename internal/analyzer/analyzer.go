package analyzer

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// fftSize — размер окна БПФ; фиксированный размер дает предсказуемую
	// задержку и позволяет обойтись без переаллокаций
	fftSize = 2048

	// rmsGain — усиление RMS для наглядности отображения
	rmsGain = 4.0

	// Границы частотных полос в герцах
	bassLow    = 20.0
	bassHigh   = 250.0
	midHigh    = 4000.0
	trebleHigh = 16000.0

	// Подобранные коэффициенты усиления энергий полос
	bassGain   = 15.0
	midGain    = 8.0
	trebleGain = 20.0

	// Параметры детектора битов: всплеск баса относительно скользящего
	// среднего, устойчивый к разнице в нормализации громкости треков
	beatHistorySize = 20
	beatRatio       = 1.5
	beatFloor       = 0.15
	beatCooldown    = 200 * time.Millisecond
)

// Features — мгновенный снимок характеристик звука: громкость RMS,
// энергии полос (каждая нормализована в [0, 1]) и флаг бита.
// Пересчитывается на каждом тике интерфейса и нигде не сохраняется.
type Features struct {
	RMS    float64
	Bass   float64
	Mid    float64
	Treble float64
	Beat   bool
}

// Analyzer извлекает спектральные характеристики из общего буфера сэмплов
type Analyzer struct {
	buffer     *SampleBuffer
	fft        *fourier.FFT
	window     []float64
	sampleRate float64

	// Состояние детектора битов
	bassHistory []float64
	lastBeat    time.Time
}

// NewAnalyzer создает анализатор поверх общего буфера сэмплов
func NewAnalyzer(buffer *SampleBuffer, sampleRate int) *Analyzer {
	// Заранее считаем окно Ханна
	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return &Analyzer{
		buffer:      buffer,
		fft:         fourier.NewFFT(fftSize),
		window:      window,
		sampleRate:  float64(sampleRate),
		bassHistory: make([]float64, 0, beatHistorySize),
		lastBeat:    time.Now().Add(-time.Second),
	}
}

// Analyze считает характеристики по последним сэмплам буфера.
// Если сэмплов меньше размера окна БПФ, возвращает нулевой снимок.
func (a *Analyzer) Analyze() Features {
	samples := a.buffer.Latest(fftSize)
	if samples == nil {
		return Features{}
	}

	// RMS по сырому окну с фиксированным усилением
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := clamp(math.Sqrt(sum/float64(len(samples))) * rmsGain)

	// Окно Ханна и прямое БПФ
	windowed := make([]float64, fftSize)
	for i, s := range samples {
		windowed[i] = s * a.window[i]
	}
	coeffs := a.fft.Coefficients(nil, windowed)

	// Амплитуды бинов до частоты Найквиста
	nyquistBins := fftSize / 2
	magnitudes := make([]float64, nyquistBins)
	for i := 0; i < nyquistBins; i++ {
		magnitudes[i] = cmplx.Abs(coeffs[i]) / float64(fftSize)
	}

	binWidth := a.sampleRate / float64(fftSize)
	bassStart := int(bassLow / binWidth)
	bassEnd := int(bassHigh / binWidth)
	midEnd := int(midHigh / binWidth)
	trebleEnd := int(math.Min(trebleHigh/binWidth, float64(nyquistBins)))

	bass := clamp(bandEnergy(magnitudes, bassStart, bassEnd) * bassGain)
	mid := clamp(bandEnergy(magnitudes, bassEnd, midEnd) * midGain)
	treble := clamp(bandEnergy(magnitudes, midEnd, trebleEnd) * trebleGain)

	return Features{
		RMS:    rms,
		Bass:   bass,
		Mid:    mid,
		Treble: treble,
		Beat:   a.detectBeat(bass),
	}
}

// detectBeat обновляет скользящее окно значений баса и решает, случился ли бит.
// Кулдаун монотонный: его сбрасывает только сам сработавший бит.
func (a *Analyzer) detectBeat(bass float64) bool {
	a.bassHistory = append(a.bassHistory, bass)
	if len(a.bassHistory) > beatHistorySize {
		a.bassHistory = a.bassHistory[1:]
	}

	var avg float64
	for _, v := range a.bassHistory {
		avg += v
	}
	avg /= float64(len(a.bassHistory))

	beat := bass > avg*beatRatio && bass > beatFloor && time.Since(a.lastBeat) > beatCooldown
	if beat {
		a.lastBeat = time.Now()
	}
	return beat
}

// bandEnergy интегрирует квадраты амплитуд по диапазону бинов
func bandEnergy(magnitudes []float64, start, end int) float64 {
	start = min(start, len(magnitudes))
	end = min(end, len(magnitudes))
	if start >= end {
		return 0
	}
	var sum float64
	for _, m := range magnitudes[start:end] {
		sum += m * m
	}
	return math.Sqrt(sum)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
