package humanize

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
)

// Strategy names a fractional noise implementation
type Strategy string

// Noise strategies
const (
	StrategySpectral Strategy = "spectral"
	StrategyGaussian Strategy = "gaussian"
)

// zeroFrequency stands in for the DC bin so 1/f^h stays finite
const zeroFrequency = 1e-6

// NoiseGenerator produces n correlated timing offsets with the given Hurst
// exponent, zero mean and standard deviation scale
type NoiseGenerator interface {
	Generate(n int, hurst, scale float64) []float64
}

// ParseStrategy maps a config value to a strategy, defaulting to spectral
func ParseStrategy(s string) Strategy {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyGaussian:
		return StrategyGaussian
	case StrategySpectral, "":
		return StrategySpectral
	default:
		logger.Warn("Unknown noise strategy, using spectral", logger.Fields{"strategy": s})
		return StrategySpectral
	}
}

// NewNoiseGenerator builds the generator for a strategy
func NewNoiseGenerator(strategy Strategy, src rand.Source) NoiseGenerator {
	gauss := &GaussianNoise{src: src}
	if strategy == StrategyGaussian {
		return gauss
	}
	return &SpectralNoise{src: src, fallback: gauss}
}

// GaussianNoise draws independent normal values with sigma = scale/3
type GaussianNoise struct {
	src rand.Source
}

// Generate ignores hurst
func (g *GaussianNoise) Generate(n int, _ float64, scale float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if scale <= 0 {
		return out
	}
	dist := distuv.Normal{Mu: 0, Sigma: scale / 3, Src: g.src}
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// SpectralNoise shapes white noise with a 1/f^h filter in the frequency domain
type SpectralNoise struct {
	src      rand.Source
	fallback *GaussianNoise
}

// Generate falls back to Gaussian noise for fewer than two values
func (s *SpectralNoise) Generate(n int, hurst, scale float64) []float64 {
	if n < 2 {
		return s.fallback.Generate(n, hurst, scale)
	}

	white := make([]float64, n)
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: s.src}
	for i := range white {
		white[i] = dist.Rand()
	}

	spectrum := fft.FFTReal(white)
	for i, f := range frequencies(n) {
		amp := 0.0
		if i > 0 {
			amp = math.Pow(math.Abs(f), -hurst)
		}
		spectrum[i] *= complex(amp, 0)
	}

	shaped := fft.IFFT(spectrum)
	out := make([]float64, n)
	for i, c := range shaped {
		out[i] = real(c)
		if cmplx.IsNaN(c) {
			out[i] = 0
		}
	}

	mean, std := stat.PopMeanStdDev(out, nil)
	if std == 0 {
		return make([]float64, n)
	}
	for i := range out {
		out[i] = scale * (out[i] - mean) / std
	}
	return out
}

// frequencies returns the sample frequencies of an n-point DFT in cycles per
// sample, positive half first, with the zero bin replaced by zeroFrequency
func frequencies(n int) []float64 {
	freqs := make([]float64, n)
	half := (n - 1) / 2
	for i := 0; i < n; i++ {
		k := i
		if i > half {
			k = i - n
		}
		freqs[i] = float64(k) / float64(n)
	}
	freqs[0] = zeroFrequency
	return freqs
}
