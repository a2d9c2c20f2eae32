package term

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/widget"
)

// Palette holds the styles keys are drawn with.
type Palette struct {
	Window   tcell.Style
	Key      tcell.Style
	Pressed  tcell.Style
	Latched  tcell.Style
	Locked   tcell.Style
	Inactive tcell.Style
	Dwell    tcell.Style
	Popup    tcell.Style
	Hover    tcell.Style
	Handle   tcell.Style
}

// DefaultPalette is the palette the host draws with.
var DefaultPalette = Palette{
	Window:   tcell.StyleDefault.Background(tcell.ColorBlack),
	Key:      tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite),
	Pressed:  tcell.StyleDefault.Background(tcell.ColorSilver).Foreground(tcell.ColorBlack),
	Latched:  tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite),
	Locked:   tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite).Bold(true),
	Inactive: tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorGray),
	Dwell:    tcell.StyleDefault.Background(tcell.ColorDarkOrange).Foreground(tcell.ColorBlack),
	Popup:    tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
	Hover:    tcell.StyleDefault.Background(tcell.ColorRoyalBlue).Foreground(tcell.ColorWhite).Bold(true),
	Handle:   tcell.StyleDefault.Background(tcell.ColorGold).Foreground(tcell.ColorBlack),
}

// cells converts a canvas rectangle to the screen cells it covers,
// [x0, x1) by [y0, y1).
func (h *Host) cells(r geom.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Round(h.pos.X + r.X))
	y0 = int(math.Round(h.pos.Y + r.Y))
	x1 = int(math.Round(h.pos.X + r.X + r.W))
	y1 = int(math.Round(h.pos.Y + r.Y + r.H))
	return x0, y0, x1, y1
}

func (h *Host) fill(x0, y0, x1, y1 int, style tcell.Style) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			h.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// text writes s centered in [x0, x1) on row y, clipped to the range.
func (h *Host) text(x0, x1, y int, s string, style tcell.Style) {
	width := uniseg.StringWidth(s)
	x := x0 + (x1-x0-width)/2
	if x < x0 {
		x = x0
	}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if x+w > x1 {
			return
		}
		runes := g.Runes()
		h.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
}

// Draw repaints the whole screen.
func (h *Host) Draw() {
	h.dirty = false
	h.Fit()
	h.screen.Clear()
	if h.visible && h.opacity > 0 && h.kb != nil {
		dim := h.opacity < 1
		style := func(s tcell.Style) tcell.Style { return s.Dim(dim) }

		x0, y0, x1, y1 := h.cells(geom.R(0, 0, h.width, h.height))
		h.fill(x0, y0, x1, y1, style(DefaultPalette.Window))
		for _, k := range h.kb.VisibleKeys() {
			h.drawKey(k, style)
		}
		if p := h.w.Popup(); p != nil {
			h.drawPopup(p, style)
		}
		for _, th := range h.w.TouchHandles() {
			x0, y0, x1, y1 := h.cells(th.Rect)
			s := DefaultPalette.Handle
			if th.Handle == h.w.PressedHandle() {
				s = s.Reverse(true)
			}
			h.fill(x0, y0, x1, y1, style(s))
			h.text(x0, x1, (y0+y1-1)/2, th.Handle.String(), style(s))
		}
	}
	h.screen.Show()
}

func keyStyle(k *keyboard.Key) tcell.Style {
	switch {
	case !k.Sensitive:
		return DefaultPalette.Inactive
	case k.Pressed:
		return DefaultPalette.Pressed
	case k.Locked:
		return DefaultPalette.Locked
	case k.Latched:
		return DefaultPalette.Latched
	}
	return DefaultPalette.Key
}

func (h *Host) drawKey(k *keyboard.Key, style func(tcell.Style) tcell.Style) {
	x0, y0, x1, y1 := h.cells(k.Bounds())
	// Leave a gap column between neighbors.
	if x1-x0 > 2 {
		x1--
	}
	if x1 <= x0 || y1 <= y0 {
		return
	}
	s := style(keyStyle(k))
	h.fill(x0, y0, x1, y1, s)
	h.text(x0, x1, (y0+y1-1)/2, k.Label(), s)

	if k.IsDwelling() {
		n := int(math.Round(k.DwellProgress(h.sched.Now()) * float64(x1-x0)))
		h.fill(x0, y1-1, x0+n, y1, style(DefaultPalette.Dwell))
	}
}

func (h *Host) drawPopup(p *widget.Popup, style func(tcell.Style) tcell.Style) {
	for i, item := range p.Items {
		s := DefaultPalette.Popup
		if i == p.Hover() {
			s = DefaultPalette.Hover
		}
		x0, y0, x1, y1 := h.cells(item.Rect)
		h.fill(x0, y0, x1, y1, style(s))
		h.text(x0, x1, (y0+y1-1)/2, item.Label, style(s))
	}
}
