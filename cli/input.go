package cli

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Jabolol/gameboy/ui"
)

// keyboard maps keys to joypad buttons. Letters used by the dock are left
// out.
var keyboard = []struct {
	keys   []ebiten.Key
	button ui.Joypad
}{
	{[]ebiten.Key{ebiten.KeyArrowUp}, ui.ButtonUp},
	{[]ebiten.Key{ebiten.KeyArrowDown}, ui.ButtonDown},
	{[]ebiten.Key{ebiten.KeyArrowLeft}, ui.ButtonLeft},
	{[]ebiten.Key{ebiten.KeyArrowRight}, ui.ButtonRight},
	{[]ebiten.Key{ebiten.KeyX}, ui.ButtonA},
	{[]ebiten.Key{ebiten.KeyZ}, ui.ButtonB},
	{[]ebiten.Key{ebiten.KeyEnter}, ui.ButtonStart},
	{[]ebiten.Key{ebiten.KeyBackspace, ebiten.KeyShiftRight}, ui.ButtonSelect},
}

var gamepad = []struct {
	button ebiten.StandardGamepadButton
	joypad ui.Joypad
}{
	{ebiten.StandardGamepadButtonLeftTop, ui.ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, ui.ButtonDown},
	{ebiten.StandardGamepadButtonLeftLeft, ui.ButtonLeft},
	{ebiten.StandardGamepadButtonLeftRight, ui.ButtonRight},
	{ebiten.StandardGamepadButtonRightRight, ui.ButtonA},
	{ebiten.StandardGamepadButtonRightBottom, ui.ButtonB},
	{ebiten.StandardGamepadButtonCenterRight, ui.ButtonStart},
	{ebiten.StandardGamepadButtonCenterLeft, ui.ButtonSelect},
}

// stickDeadzone is how far the left stick must move to press a direction.
const stickDeadzone = 0.5

// PollJoypad reads the keyboard and every connected standard gamepad.
func PollJoypad() ui.Joypad {
	var pad ui.Joypad

	for _, m := range keyboard {
		for _, k := range m.keys {
			if ebiten.IsKeyPressed(k) {
				pad |= m.button
			}
		}
	}

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}

		for _, m := range gamepad {
			if ebiten.IsStandardGamepadButtonPressed(id, m.button) {
				pad |= m.joypad
			}
		}

		axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		switch {
		case axisX < -stickDeadzone:
			pad |= ui.ButtonLeft
		case axisX > stickDeadzone:
			pad |= ui.ButtonRight
		}
		switch {
		case axisY < -stickDeadzone:
			pad |= ui.ButtonUp
		case axisY > stickDeadzone:
			pad |= ui.ButtonDown
		}
	}

	return pad
}
