// ABOUTME: Format conversion for uploading decoded samples to a device
// ABOUTME: Remixes channel layout and resamples to the device rate
package resample

import "github.com/Resonate-Protocol/sampleplayer/pkg/audio"

// Remix converts interleaved samples between channel counts.
// Mono is duplicated to every output channel; downmixing to mono averages
// all input channels; other layouts copy matching channels and fill the rest
// from the last input channel.
func Remix(samples []int32, from, to int) []int32 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]int32, frames*to)

	for f := 0; f < frames; f++ {
		in := samples[f*from : f*from+from]

		if to == 1 {
			var sum int64
			for _, s := range in {
				sum += int64(s)
			}
			out[f] = int32(sum / int64(from))
			continue
		}

		for ch := 0; ch < to; ch++ {
			src := ch
			if src >= from {
				src = from - 1
			}
			out[f*to+ch] = in[src]
		}
	}

	return out
}

// ToFormat returns buf converted to sampleRate and channels
func ToFormat(buf audio.Buffer, sampleRate, channels int) audio.Buffer {
	samples := Remix(buf.Samples, buf.Format.Channels, channels)

	format := buf.Format
	format.Channels = channels

	if buf.Format.SampleRate != sampleRate && buf.Format.SampleRate > 0 {
		r := New(buf.Format.SampleRate, sampleRate, channels)
		out := make([]int32, r.OutputSamplesNeeded(len(samples))+channels)
		n := r.Resample(samples, out)
		samples = out[:n]
	}
	format.SampleRate = sampleRate

	return audio.Buffer{Samples: samples, Format: format}
}
