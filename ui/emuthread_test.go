package ui

import (
	"testing"
	"time"
)

func TestSharedInput(t *testing.T) {
	var si SharedInput
	si.Set(ButtonA | ButtonStart)
	if got := si.Read(); got != ButtonA|ButtonStart {
		t.Errorf("got %08b, want %08b", got, ButtonA|ButtonStart)
	}
}

func TestSilentOutput(t *testing.T) {
	out := NewSilentOutput(0.7)
	if got := out.Volume(); got != 0.7 {
		t.Errorf("got %v, want 0.7", got)
	}
	out.SetVolume(0.2)
	if got := out.Volume(); got != 0.2 {
		t.Errorf("got %v, want 0.2", got)
	}
}

// loop runs a fake emulation goroutine counting frames until stopped.
func loop(ec *EmuControl, frames chan<- struct{}) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ec.CheckPause() {
			select {
			case frames <- struct{}{}:
			default:
			}
			time.Sleep(time.Millisecond)
		}
	}()
	return done
}

func TestEmuControl_PauseResumeStop(t *testing.T) {
	ec := NewEmuControl()
	frames := make(chan struct{}, 1)
	done := loop(ec, frames)

	<-frames
	ec.RequestPause()
	ec.mu.Lock()
	paused := ec.paused
	ec.mu.Unlock()
	if !paused {
		t.Fatal("not paused after RequestPause returned")
	}

	// drain a frame produced before the pause was acknowledged
	select {
	case <-frames:
	default:
	}
	select {
	case <-frames:
		t.Fatal("frame produced while paused")
	case <-time.After(30 * time.Millisecond):
	}

	ec.RequestResume()
	select {
	case <-frames:
	case <-time.After(time.Second):
		t.Fatal("no frame after resume")
	}

	ec.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after Stop")
	}
}

func TestEmuControl_StopWhilePaused(t *testing.T) {
	ec := NewEmuControl()
	done := loop(ec, make(chan struct{}, 1))

	ec.RequestPause()
	ec.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestEmuControl_PauseAfterStopReturns(t *testing.T) {
	ec := NewEmuControl()
	ec.Stop()

	returned := make(chan struct{})
	go func() {
		ec.RequestPause()
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("RequestPause blocked after Stop")
	}
}
