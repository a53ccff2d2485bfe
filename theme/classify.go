package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// Detected is the outcome of one sample: Light, Dark or a "#rrggbb" colour.
type Detected string

const (
	Light Detected = "light"
	Dark  Detected = "dark"

	// White is the detected value before any frame has been sampled and the
	// result of DominantColor when no pixel qualifies.
	White Detected = "#ffffff"
)

// IsColor reports whether d is a hex colour rather than a binary label.
func (d Detected) IsColor() bool {
	return strings.HasPrefix(string(d), "#")
}

// DetectFromAnalysis reduces a PixelAnalysis to Light or Dark. The border
// decides when one side outnumbers the other by the dominance ratio,
// otherwise the interior decides and a tie goes to Light.
func DetectFromAnalysis(a PixelAnalysis, dominance float64) Detected {
	if float64(a.BorderDark) > float64(a.BorderLight)*dominance {
		return Dark
	}
	if float64(a.BorderLight) > float64(a.BorderDark)*dominance {
		return Light
	}
	if a.InnerDark > a.InnerLight {
		return Dark
	}
	return Light
}

const (
	// fraction of each axis treated as border by DominantColor
	dominantBand = 0.5

	// pixels with less alpha than this are ignored by DominantColor
	opaqueAlpha = 128

	// width of a colour bin in each channel
	binSize = 32
)

type colorBin struct {
	r, g, b int
	count   int
}

// DominantColor quantizes the opaque border pixels into colour bins and
// returns the mean colour of the most populated bin as "#rrggbb". Bins are
// ranked in the order they were first seen, so the earliest bin wins a tie.
func DominantColor(pix []byte, cfg SamplingConfig) Detected {
	bandX := int(float64(cfg.Width) * dominantBand)
	bandY := int(float64(cfg.Height) * dominantBand)

	index := make(map[int]int)
	var bins []colorBin

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			border := x < bandX || x >= cfg.Width-bandX || y < bandY || y >= cfg.Height-bandY
			if !border {
				continue
			}

			i := (y*cfg.Width + x) * 4
			if i+3 >= len(pix) {
				break
			}
			if pix[i+3] < opaqueAlpha {
				continue
			}

			r, g, b := int(pix[i]), int(pix[i+1]), int(pix[i+2])
			key := (r/binSize)<<16 | (g/binSize)<<8 | b/binSize

			n, ok := index[key]
			if !ok {
				n = len(bins)
				index[key] = n
				bins = append(bins, colorBin{})
			}
			bins[n].r += r
			bins[n].g += g
			bins[n].b += b
			bins[n].count++
		}
	}

	if len(bins) == 0 {
		return White
	}

	best := 0
	for n := range bins {
		if bins[n].count > bins[best].count {
			best = n
		}
	}

	bin := bins[best]
	return hexColor(mean(bin.r, bin.count), mean(bin.g, bin.count), mean(bin.b, bin.count))
}

func mean(sum, count int) uint8 {
	return uint8((sum + count/2) / count)
}

func hexColor(r, g, b uint8) Detected {
	return Detected(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// IsColorDark reports whether a detected value should be shown with a dark
// theme. Hex colours are judged by perceived brightness.
func IsColorDark(d Detected) bool {
	switch d {
	case Light:
		return false
	case Dark:
		return true
	}

	r, g, b, ok := parseHex(d)
	if !ok {
		return false
	}
	return (float64(r)*299+float64(g)*587+float64(b)*114)/1000 < 128
}

func parseHex(d Detected) (uint8, uint8, uint8, bool) {
	s := strings.TrimPrefix(string(d), "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// RGB returns the components of a hex colour. The bool is false for the
// binary labels and for malformed values.
func (d Detected) RGB() (uint8, uint8, uint8, bool) {
	return parseHex(d)
}
