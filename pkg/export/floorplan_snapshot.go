// Package export renders shareable artifacts from the current view.
//
// The floor-plan snapshot draws the resolved pin layer on a fixed-aspect
// canvas, positioning every pin by its percentage coordinates, so the
// output matches what any resolution-independent consumer would render.
// Output is deterministic for a given pin set, which keeps golden tests
// stable.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"sort"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/false0brian/hometypemap/pkg/pins"
)

// Canvas dimensions. 4:3 matches the collaborator's floor-plan images.
const (
	snapshotWidth  = 800
	snapshotHeight = 600
	pinRadius      = 9
)

var (
	colorCanvas   = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorFrame    = color.RGBA{0x24, 0x31, 0x41, 0xff}
	colorPin      = color.RGBA{0x7c, 0x3a, 0xed, 0xff}
	colorPinSynth = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorSelected = color.RGBA{0xef, 0x44, 0x44, 0xff}
	colorLabel    = color.RGBA{0x11, 0x11, 0x11, 0xff}
)

// SnapshotOptions configures a floor-plan snapshot.
type SnapshotOptions struct {
	// Title is drawn in the header (complex + unit type).
	Title string
	// Pins is the resolved pin layer.
	Pins []pins.PlacedPin
	// SelectedPinID highlights one pin (0 = none).
	SelectedPinID int64
}

// WriteSVG renders the snapshot as SVG.
func WriteSVG(w io.Writer, opts SnapshotOptions) error {
	canvas := svg.New(w)
	canvas.Start(snapshotWidth, snapshotHeight)
	canvas.Rect(0, 0, snapshotWidth, snapshotHeight, fmt.Sprintf("fill:%s", css(colorCanvas)))
	canvas.Rect(0, 0, snapshotWidth, 36, fmt.Sprintf("fill:%s", css(colorFrame)))
	canvas.Text(12, 24, opts.Title, "fill:#ffffff;font-size:15px;font-family:monospace")

	for _, p := range sortedPins(opts.Pins) {
		x := int(p.X / 100 * snapshotWidth)
		y := 36 + int(p.Y/100*(snapshotHeight-36))
		c := colorPin
		if p.Synthetic {
			c = colorPinSynth
		}
		if p.PinID == opts.SelectedPinID {
			canvas.Circle(x, y, pinRadius+4, fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", css(colorSelected)))
		}
		canvas.Circle(x, y, pinRadius, fmt.Sprintf("fill:%s", css(c)))
		canvas.Text(x+pinRadius+4, y+4, p.Title,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorLabel)))
	}

	canvas.End()
	return nil
}

// SaveSVG writes the snapshot to a file.
func SaveSVG(path string, opts SnapshotOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSVG(file, opts)
}

// SavePNG renders the snapshot as a raster image.
func SavePNG(path string, opts SnapshotOptions) error {
	dc := gg.NewContext(snapshotWidth, snapshotHeight)
	dc.SetColor(colorCanvas)
	dc.Clear()

	dc.SetColor(colorFrame)
	dc.DrawRectangle(0, 0, snapshotWidth, 36)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(color.White)
	dc.DrawString(opts.Title, 12, 24)

	for _, p := range sortedPins(opts.Pins) {
		x := p.X / 100 * snapshotWidth
		y := 36 + p.Y/100*(snapshotHeight-36)
		if p.PinID == opts.SelectedPinID {
			dc.SetColor(colorSelected)
			dc.SetLineWidth(3)
			dc.DrawCircle(x, y, pinRadius+4)
			dc.Stroke()
		}
		if p.Synthetic {
			dc.SetColor(colorPinSynth)
		} else {
			dc.SetColor(colorPin)
		}
		dc.DrawCircle(x, y, pinRadius)
		dc.Fill()

		dc.SetColor(colorLabel)
		dc.DrawString(p.Title, x+pinRadius+4, y+4)
	}

	return dc.SavePNG(path)
}

// sortedPins orders pins by id so output does not depend on fetch order.
func sortedPins(in []pins.PlacedPin) []pins.PlacedPin {
	out := make([]pins.PlacedPin, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].PinID < out[j].PinID })
	return out
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
