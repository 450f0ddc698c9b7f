package analysis

import (
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns |X_k|² for k = 0..N/2 of the mean-removed series,
// zero padded to the next power of two N.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}

	n := nextPow2(len(series))
	buf := make([]float64, n)
	copy(buf, series)
	mean := floats.Sum(series) / float64(len(series))
	floats.AddConst(-mean, buf[:len(series)])

	spectrum := fft.FFTReal(buf)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(spectrum[k])
		ps[k] = a * a
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of a series sampled every dt seconds.
func DominantFrequency(series []float64, dt float64) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	k := floats.MaxIdx(ps[1:]) + 1
	n := nextPow2(len(series))
	return float64(k) / (float64(n) * dt)
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
