// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling between sample rates
package resample

import (
	"testing"
)

func TestNew(t *testing.T) {
	r := New(44100, 48000, 2)

	if r == nil {
		t.Fatal("expected resampler to be created")
	}

	if r.inputRate != 44100 {
		t.Errorf("expected inputRate 44100, got %d", r.inputRate)
	}

	if r.outputRate != 48000 {
		t.Errorf("expected outputRate 48000, got %d", r.outputRate)
	}

	if r.channels != 2 {
		t.Errorf("expected channels 2, got %d", r.channels)
	}
}

func TestResampleUpsampling(t *testing.T) {
	// 44100 -> 48000 (upsampling by factor of ~1.088)
	r := New(44100, 48000, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100) // Ramp signal
	}

	expectedSize := int(float64(len(input)) * float64(48000) / float64(44100))
	output := make([]int32, expectedSize)

	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	// Allow some tolerance due to rounding
	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleDownsampling(t *testing.T) {
	// 48000 -> 44100 (downsampling by factor of ~0.91875)
	r := New(48000, 44100, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100)
	}

	expectedSize := int(float64(len(input)) * float64(44100) / float64(48000))
	output := make([]int32, expectedSize)

	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleSameRate(t *testing.T) {
	r := New(48000, 48000, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100)
	}

	output := make([]int32, len(input)+10)
	n := r.Resample(input, output)

	if n != len(input) {
		t.Errorf("expected %d samples, got %d", len(input), n)
	}

	for i := 0; i < n; i++ {
		if output[i] != input[i] {
			t.Errorf("sample %d: expected %d, got %d", i, input[i], output[i])
		}
	}
}

func TestResampleStereo(t *testing.T) {
	r := New(44100, 48000, 2)

	input := make([]int32, 20) // 10 stereo frames
	for i := 0; i < 10; i++ {
		input[i*2] = 1000    // Left channel
		input[i*2+1] = -1000 // Right channel
	}

	output := make([]int32, 30)
	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	for i := 0; i < n/2; i++ {
		// Interpolating a constant may round down by one
		if abs(int(output[i*2])-1000) > 1 {
			t.Errorf("frame %d: left expected ~1000, got %d", i, output[i*2])
		}
		if abs(int(output[i*2+1])+1000) > 1 {
			t.Errorf("frame %d: right expected ~-1000, got %d", i, output[i*2+1])
		}
	}
}

func TestResampleLargeRatioUp(t *testing.T) {
	r := New(44100, 192000, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 10)
	}

	expectedSize := int(float64(len(input)) * float64(192000) / float64(44100))
	output := make([]int32, expectedSize)

	n := r.Resample(input, output)

	if n < len(input)*3 {
		t.Errorf("expected at least 3x upsampling, got %d from %d", n, len(input))
	}
}

func TestResampleLargeRatioDown(t *testing.T) {
	r := New(192000, 48000, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 10)
	}

	output := make([]int32, len(input))

	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	if n > len(input)/2 {
		t.Errorf("expected at most 1/2 samples after downsampling, got %d from %d", n, len(input))
	}
}

func TestResampleEmptyInput(t *testing.T) {
	r := New(44100, 48000, 2)

	n := r.Resample([]int32{}, make([]int32, 100))

	if n != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", n)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
