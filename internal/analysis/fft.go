package analysis

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform with an iterative
// radix-2 Cooley-Tukey. Inputs shorter than a power of two are
// zero-padded.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	buf := make([]complex128, n)
	for i, v := range data {
		buf[i] = complex(v, 0)
	}
	if n <= 1 {
		return buf
	}

	// Bit-reversal permutation.
	shift := bits.LeadingZeros(uint(n)) + 1
	for i := 0; i < n; i++ {
		j := int(bits.Reverse(uint(i)) >> shift)
		if j > i {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				a := buf[start+k]
				b := w * buf[start+k+half]
				buf[start+k] = a + b
				buf[start+k+half] = a - b
				w *= step
			}
		}
	}

	return buf
}

func nextPow2(n int) int {
	if n <= 1 {
		return n
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// PowerSpectrum returns the magnitude of the first half of the
// transform, one entry per non-negative frequency bin.
func PowerSpectrum(data []float64) []float64 {
	out := FFT(data)
	ps := make([]float64, len(out)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency in Hz for a
// signal sampled every dt seconds. Zero means no oscillation was found.
func DominantFrequency(data []float64, dt float64) float64 {
	if dt <= 0 || len(data) < 4 {
		return 0
	}

	ps := PowerSpectrum(data)
	best, bestMag := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > bestMag {
			best, bestMag = i, ps[i]
		}
	}
	if best == 0 {
		return 0
	}

	n := nextPow2(len(data))
	return float64(best) / (float64(n) * dt)
}
