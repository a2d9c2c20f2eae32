package widget

import (
	"math"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/keyboard"
)

// Popup offers alternative characters for a long pressed key. It opens
// in a row above the key, or below it when there is no room above.
type Popup struct {
	Key   *keyboard.Key
	Items []PopupItem
	hover int
}

// PopupItem is one alternative.
type PopupItem struct {
	Label string
	Rect  geom.Rect
}

func newPopup(k *keyboard.Key, alternatives []string, width float64) *Popup {
	kr := k.Bounds()
	total := kr.W * float64(len(alternatives))
	x := kr.X
	if x+total > width {
		x = math.Max(0, width-total)
	}
	y := kr.Y - kr.H
	if y < 0 {
		y = kr.Y + kr.H
	}

	p := &Popup{Key: k, hover: -1}
	for i, alt := range alternatives {
		p.Items = append(p.Items, PopupItem{
			Label: alt,
			Rect:  geom.R(x+float64(i)*kr.W, y, kr.W, kr.H),
		})
	}
	return p
}

// ItemAt returns the index of the item at pt, or -1.
func (p *Popup) ItemAt(pt geom.Point) int {
	for i, it := range p.Items {
		if it.Rect.Contains(pt) {
			return i
		}
	}
	return -1
}

// Hover returns the highlighted item, or -1.
func (p *Popup) Hover() int {
	return p.hover
}

// Bounds returns the area covered by the items.
func (p *Popup) Bounds() geom.Rect {
	var r geom.Rect
	for _, it := range p.Items {
		r = r.Union(it.Rect)
	}
	return r
}

// Popup returns the open alternatives popup, if any.
func (w *Widget) Popup() *Popup {
	return w.popup
}

// ShowAlternatives opens the popup for k.
func (w *Widget) ShowAlternatives(k *keyboard.Key, alternatives []string) {
	width, _ := w.host.Size()
	w.popup = newPopup(k, alternatives, width)
	w.host.Invalidate()
}

func (w *Widget) hoverPopup(pt geom.Point) {
	if i := w.popup.ItemAt(pt); i != w.popup.hover {
		w.popup.hover = i
		w.host.Invalidate()
	}
}

func (w *Widget) closePopup() {
	if w.popup == nil {
		return
	}
	w.popup = nil
	w.host.Invalidate()
}

// selectAlternative types the i-th alternative and closes the popup.
// Like any ordinary key it releases latched modifiers afterwards.
func (w *Widget) selectAlternative(i int) {
	text := w.popup.Items[i].Label
	w.closePopup()
	w.kb.TypeText(text)
	w.kb.ReleaseLatchedStickyKeys()
}
