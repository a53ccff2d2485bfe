package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// SampleRate is the output rate of every player. Cores are expected to
// produce 16-bit stereo at this rate.
const SampleRate = 48000

// pcmCapacity is ~170ms at 48kHz stereo 16-bit.
const pcmCapacity = 32768

// playerBufferSize is oto's own buffer on top of the PCMBuffer.
const playerBufferSize = 19200

// Output is a volume control over whatever produces sound.
type Output interface {
	SetVolume(v float64)
	Volume() float64
}

// Flusher drops audio that was queued but not played yet.
type Flusher interface {
	Flush()
}

// AudioPlayer plays int16 stereo samples through oto. Samples are queued
// into a PCMBuffer which oto's player pulls from.
type AudioPlayer struct {
	player  *oto.Player
	pcm     *PCMBuffer
	scratch []byte // reused for int16 to byte conversion
}

var (
	_ Output  = (*AudioPlayer)(nil)
	_ Flusher = (*AudioPlayer)(nil)
)

// the oto context can only be created once per process
var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// NewAudioPlayer opens the audio device and starts playback at the given
// volume. Callers should fall back to NewSilentOutput when it fails.
func NewAudioPlayer(volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext()
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	pcm := NewPCMBuffer(pcmCapacity)
	player := ctx.NewPlayer(pcm)
	player.SetBufferSize(playerBufferSize)
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		player:  player,
		pcm:     pcm,
		scratch: make([]byte, 0, 4096),
	}, nil
}

// QueueSamples converts interleaved int16 samples to little-endian bytes
// and queues them for playback.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}

	a.scratch = a.scratch[:0]
	for _, s := range samples {
		a.scratch = append(a.scratch, byte(s), byte(s>>8))
	}
	a.pcm.Write(a.scratch)
}

// BufferLevel returns the bytes queued in the PCMBuffer plus those held by
// oto. Frame pacing speeds up or slows down to keep it in a band.
func (a *AudioPlayer) BufferLevel() int {
	return a.pcm.Buffered() + a.player.BufferedSize()
}

// Flush drops queued audio so the previous game is not heard after a
// switch.
func (a *AudioPlayer) Flush() {
	a.pcm.Clear()
}

// SetVolume sets the playback volume, 0 is silent and 1 is full.
func (a *AudioPlayer) SetVolume(v float64) {
	a.player.SetVolume(v)
}

func (a *AudioPlayer) Volume() float64 {
	return a.player.Volume()
}

func (a *AudioPlayer) Close() {
	if a.pcm != nil {
		a.pcm.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}

// silentOutput remembers the volume but plays nothing.
type silentOutput struct {
	mu     sync.Mutex
	volume float64
}

// NewSilentOutput returns an Output for when no audio device is available.
func NewSilentOutput(volume float64) Output {
	return &silentOutput{volume: volume}
}

func (s *silentOutput) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

func (s *silentOutput) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}
