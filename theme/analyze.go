// Package theme infers a light/dark theme, or a background colour, from the
// pixels the emulator renders into the canvas.
package theme

// SamplingConfig describes the region of RGBA pixels handed to the analyzer.
// It does not change during a sampling session.
type SamplingConfig struct {
	Width               int
	Height              int
	BorderThickness     int
	BrightnessThreshold float64
}

// PixelAnalysis counts the pixels of one frame, split by border/interior
// and light/dark.
type PixelAnalysis struct {
	BorderLight int
	BorderDark  int
	InnerLight  int
	InnerDark   int
}

func isBorder(x, y, width, height, thickness int) bool {
	return x < thickness || x >= width-thickness || y < thickness || y >= height-thickness
}

func brightness(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3
}

// AnalyzePixels classifies every pixel of an RGBA buffer with a row stride of
// Width*4. A short buffer is analysed as far as it reaches.
func AnalyzePixels(pix []byte, cfg SamplingConfig) PixelAnalysis {
	var a PixelAnalysis

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			i := (y*cfg.Width + x) * 4
			if i+2 >= len(pix) {
				return a
			}

			light := brightness(pix[i], pix[i+1], pix[i+2]) > cfg.BrightnessThreshold

			if isBorder(x, y, cfg.Width, cfg.Height, cfg.BorderThickness) {
				if light {
					a.BorderLight++
				} else {
					a.BorderDark++
				}
			} else {
				if light {
					a.InnerLight++
				} else {
					a.InnerDark++
				}
			}
		}
	}

	return a
}
