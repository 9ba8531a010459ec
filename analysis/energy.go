package analysis

import "math"

// features computes the three per-frame curves the composite energy is built
// from: RMS loudness, spectral centroid (brightness), and onset strength
// (positive spectral flux). All three share the same frame grid.
func features(samples []float64, o Options) (rms, centroid, onset []float64) {
	rms = rmsFrames(samples, o.FrameSize, o.Hop)
	spectra := magnitudeSpectra(samples, o.FrameSize, o.Hop)

	centroid = make([]float64, len(spectra))
	binHz := float64(o.SampleRate) / float64(o.FrameSize)
	for i, mags := range spectra {
		var weighted, total float64
		for k, m := range mags {
			weighted += float64(k) * binHz * m
			total += m
		}
		if total > 0 {
			centroid[i] = weighted / total
		}
	}

	onset = make([]float64, len(spectra))
	for i := 1; i < len(spectra); i++ {
		var flux float64
		for k := range spectra[i] {
			if d := spectra[i][k] - spectra[i-1][k]; d > 0 {
				flux += d
			}
		}
		onset[i] = flux
	}

	return rms, centroid, onset
}

// compositeCurve combines the three feature curves into one smoothed energy
// curve in [0,1]. Loudness dominates; brightness and rhythm refine it.
func compositeCurve(rms, centroid, onset []float64) []float64 {
	n := min(len(rms), min(len(centroid), len(onset)))

	r := normalize(rms[:n])
	c := normalize(centroid[:n])
	f := normalize(onset[:n])

	curve := make([]float64, n)
	for i := range curve {
		curve[i] = 0.4*r[i] + 0.3*c[i] + 0.3*f[i]
	}
	return smooth(curve)
}

func rmsFrames(samples []float64, frameSize, hop int) []float64 {
	if len(samples) < frameSize {
		var sum float64
		for _, s := range samples {
			sum += s * s
		}
		return []float64{math.Sqrt(sum / float64(len(samples)))}
	}

	var out []float64
	for start := 0; start+frameSize <= len(samples); start += hop {
		var sum float64
		for _, s := range samples[start : start+frameSize] {
			sum += s * s
		}
		out = append(out, math.Sqrt(sum/float64(frameSize)))
	}
	return out
}

// magnitudeSpectra returns the Hann-windowed magnitude spectrum of each frame,
// keeping only the non-redundant half of the FFT.
func magnitudeSpectra(samples []float64, frameSize, hop int) [][]float64 {
	if len(samples) < frameSize {
		padded := make([]float64, frameSize)
		copy(padded, samples)
		samples = padded
	}

	window := hannWindow(frameSize)
	var out [][]float64
	re := make([]float64, frameSize)
	im := make([]float64, frameSize)

	for start := 0; start+frameSize <= len(samples); start += hop {
		for i := 0; i < frameSize; i++ {
			re[i] = samples[start+i] * window[i]
			im[i] = 0
		}
		fft(re, im)

		mags := make([]float64, frameSize/2+1)
		for k := range mags {
			mags[k] = math.Hypot(re[k], im[k])
		}
		out = append(out, mags)
	}
	return out
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// fft is an in-place radix-2 Cooley-Tukey transform. len(re) must be a power
// of two; frame sizes here always are.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				i, j := start+k, start+k+length/2
				tRe := re[j]*curRe - im[j]*curIm
				tIm := re[j]*curIm + im[j]*curRe
				re[j], im[j] = re[i]-tRe, im[i]-tIm
				re[i], im[i] = re[i]+tRe, im[i]+tIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

// normalize scales a curve into [0,1]. A flat curve maps to all zeros rather
// than dividing by a zero range.
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// smooth applies a moving average sized to the curve, at most 21 frames and
// always odd. Curves too short to smooth pass through unchanged.
func smooth(curve []float64) []float64 {
	if len(curve) <= 10 {
		return curve
	}

	kernel := min(21, len(curve)/5)
	if kernel%2 == 0 {
		kernel--
	}
	if kernel < 3 {
		return curve
	}

	half := kernel / 2
	out := make([]float64, len(curve))
	for i := range curve {
		lo := max(0, i-half)
		hi := min(len(curve), i+half+1)
		var sum float64
		for _, v := range curve[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
