//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"micmute/log"
)

var (
	mutedSamples   []int16
	unmutedSamples []int16
	errorSamples   []int16
	soundOnce      sync.Once
)

// Durations include a 200ms tail so PulseAudio fills its buffer.
func initSound() {
	mutedSamples = tone(2, mutedFreq, 0.2, mutedVolume, mutedDecay)
	unmutedSamples = tone(2, unmutedFreq, 0.2, unmutedVolume, unmutedDecay)
	errorSamples = doubleBeep(2, errorFreq, 0.08, 0.05, errorVolume, errorDecay)
}

func playSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		log.Warnf("pulse playback: %v", err)
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		log.Warnf("pulse playback: %v", err)
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func Init() {
	soundOnce.Do(initSound)
}

func play(samples *[]int16) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playSamples(*samples)
}

func PlayMuted()   { play(&mutedSamples) }
func PlayUnmuted() { play(&unmutedSamples) }
func PlayError()   { play(&errorSamples) }
