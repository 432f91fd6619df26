package ui

import (
	"image"
	"os"
	"strings"

	"github.com/qeesung/image2ascii/convert"
)

// TerminalCapabilities represents what the terminal can render.
type TerminalCapabilities struct {
	TrueColor bool
	Colored   bool
}

// DetectTerminalCapabilities inspects the environment for color support.
func DetectTerminalCapabilities() TerminalCapabilities {
	colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
	term := os.Getenv("TERM")

	trueColor := colorTerm == "truecolor" || colorTerm == "24bit"
	colored := trueColor || strings.Contains(term, "color") || strings.Contains(term, "kitty")
	if os.Getenv("NO_COLOR") != "" {
		trueColor, colored = false, false
	}
	return TerminalCapabilities{TrueColor: trueColor, Colored: colored}
}

// RenderPreview renders img as ASCII art that fits targetWidth x targetHeight
// cells, colored when the terminal supports it.
func RenderPreview(img image.Image, caps TerminalCapabilities, targetWidth, targetHeight int) string {
	if img == nil || targetWidth <= 0 || targetHeight <= 0 {
		return ""
	}
	w, h := fitPreview(img.Bounds(), targetWidth, targetHeight)
	return convertToASCII(img, w, h, caps.Colored)
}

// fitPreview keeps the image aspect ratio, with terminal cells about twice
// as tall as they are wide.
func fitPreview(bounds image.Rectangle, maxW, maxH int) (int, int) {
	iw, ih := bounds.Dx(), bounds.Dy()
	if iw <= 0 || ih <= 0 {
		return maxW, maxH
	}
	w := maxW
	h := int(float64(ih) / float64(iw) * float64(w) * 0.5)
	if h > maxH {
		h = maxH
		w = int(float64(iw) / float64(ih) * float64(h) * 2)
	}
	return max(1, min(w, maxW)), max(1, h)
}

// convertToASCII converts an image to ASCII art.
func convertToASCII(img image.Image, targetWidth, targetHeight int, colored bool) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = colored
	opts.Ratio = 0.5 // Adjust for terminal character aspect ratio

	return converter.Image2ASCIIString(img, &opts)
}
