// Package pointer turns raw pointer and touch contacts into input
// sequences for the keyboard widget.
//
// # Sequences
//
// A Sequence lives from the moment a button is pressed or a finger touches
// down until it is released. The Router creates one per contact and hands
// it to a Handler in strict begin, update..., end order:
//
//	r := pointer.NewRouter(widget, pointer.DefaultConfig())
//	r.Handle(pointer.Event{Action: pointer.ActionPress, Button: pointer.ButtonPrimary, Point: p})
//
// Motion without any contact still reaches the handler as an update of a
// transient hover sequence, which is how dwelling starts.
//
// # Primary Contact
//
// Only the first of several concurrent contacts is marked Primary. The
// widget drags and moves the window with the primary sequence only.
//
// # Gestures
//
// The router recognizes two multi-contact gestures on touch screens: a
// quick tap with several fingers (three fingers reveal the resize handles)
// and a drag with two or more fingers.
//
// Single versus double click and the drag threshold are tracked by
// ClickTracker and DragTracker, which the widget owns.
//
// # Thread Safety
//
// Nothing in this package is synchronized. Everything runs on the event
// loop.
package pointer
