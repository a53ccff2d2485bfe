package theme

// Mode is the theme chosen by the user.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
	ModeAuto  Mode = "auto"
)

// Modes lists every mode in cycle order.
var Modes = []Mode{ModeLight, ModeDark, ModeAuto}

// Valid reports whether m is one of Modes.
func (m Mode) Valid() bool {
	for _, v := range Modes {
		if v == m {
			return true
		}
	}
	return false
}

// Next returns the mode that follows m in the cycle light, dark, auto.
func (m Mode) Next() Mode {
	switch m {
	case ModeLight:
		return ModeDark
	case ModeDark:
		return ModeAuto
	}
	return ModeLight
}

// Effective resolves the theme to display. In auto mode the detected value
// is used and, when it is a colour, returned as the background.
func Effective(m Mode, detected Detected) (dark bool, background Detected) {
	switch m {
	case ModeLight:
		return false, ""
	case ModeDark:
		return true, ""
	}
	if detected.IsColor() {
		return IsColorDark(detected), detected
	}
	return detected == Dark, ""
}
