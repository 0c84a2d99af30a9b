//go:build darwin

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"micmute/log"
)

var (
	malgoCtx       *malgo.AllocatedContext
	device         *malgo.Device
	mutedSamples   []byte
	unmutedSamples []byte
	errorSamples   []byte
	soundOnce      sync.Once

	// Playback state - accessed atomically from callback
	playSamples atomic.Pointer[[]byte]
	playPos     atomic.Uint32
	playMu      sync.Mutex
)

func initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: dataCallback,
	}

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, config, callbacks)
	return err
}

func initSound() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.Warnf("malgo context: %v", err)
		return
	}

	mutedSamples = pcm16(tone(1, mutedFreq, 0.05, mutedVolume, mutedDecay))
	unmutedSamples = pcm16(tone(1, unmutedFreq, 0.03, unmutedVolume, unmutedDecay))
	errorSamples = pcm16(doubleBeep(1, errorFreq, 0.08, 0.05, errorVolume, errorDecay))

	if err := initDevice(); err != nil {
		log.Warnf("malgo playback device: %v", err)
		malgoCtx.Uninit()
		malgoCtx = nil
		return
	}
}

func dataCallback(pOutput, _ []byte, frameCount uint32) {
	samples := playSamples.Load()
	if samples == nil || len(*samples) == 0 {
		// Silence when not playing
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	pos := playPos.Load()
	total := uint32(len(*samples))
	bytesToWrite := frameCount * 2
	remaining := total - pos

	if remaining == 0 {
		playSamples.Store(nil)
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	if bytesToWrite > remaining {
		bytesToWrite = remaining
	}

	copy(pOutput[:bytesToWrite], (*samples)[pos:pos+bytesToWrite])
	playPos.Store(pos + bytesToWrite)

	// Zero-fill remainder
	for i := bytesToWrite; i < frameCount*2; i++ {
		pOutput[i] = 0
	}
}

func playBytes(samples []byte) {
	if malgoCtx == nil || len(samples) == 0 {
		return
	}

	playMu.Lock()
	defer playMu.Unlock()

	if device == nil {
		return
	}

	// Stop device first to ensure clean state (no-op if not running)
	device.Stop()

	// Set up playback state
	playPos.Store(0)
	playSamples.Store(&samples)

	// Start device
	if err := device.Start(); err != nil {
		// Try recreating device (handles macOS sleep/wake)
		device.Uninit()
		if err := initDevice(); err != nil {
			playSamples.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			playSamples.Store(nil)
			return
		}
	}
}

func Init() {
	soundOnce.Do(initSound)
}

func play(samples *[]byte) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	playBytes(*samples)
}

func PlayMuted()   { play(&mutedSamples) }
func PlayUnmuted() { play(&unmutedSamples) }
func PlayError()   { play(&errorSamples) }
