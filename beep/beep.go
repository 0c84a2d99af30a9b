// Package beep plays short cue tones when the endpoint is muted or unmuted.
package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Muted: low pitch, short
	mutedFreq   = 600
	mutedVolume = 0.5
	mutedDecay  = 50

	// Unmuted: high pitch, short
	unmutedFreq   = 1200
	unmutedVolume = 0.5
	unmutedDecay  = 60

	// Error beep: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

// tone renders an exponentially decaying sine with the given number of
// interleaved channels.
func tone(channels int, freq, duration, volume, decay float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n*channels)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = s
		}
	}
	return samples
}

func doubleBeep(channels int, freq, beepDur, gapDur, volume, decay float64) []int16 {
	b := tone(channels, freq, beepDur, volume, decay)
	gap := make([]int16, int(float64(sampleRate)*gapDur)*channels)
	out := make([]int16, 0, len(b)*2+len(gap))
	out = append(out, b...)
	out = append(out, gap...)
	out = append(out, b...)
	return out
}

// pcm16 packs samples as little-endian S16.
func pcm16(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// Play picks the cue for a toggle outcome.
func Play(muted bool, err error) {
	switch {
	case err != nil:
		PlayError()
	case muted:
		PlayMuted()
	default:
		PlayUnmuted()
	}
}
