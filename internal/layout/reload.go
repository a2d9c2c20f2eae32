package layout

import (
	"github.com/dshills/osk/internal/config/watcher"
	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/logging"
)

// Reloader reloads a layout file whenever it changes on disk.
type Reloader struct {
	path string
	w    *watcher.Watcher
	log  *logging.Logger
	bus  *event.Bus
	post func(func())
	load func(*Layout)
}

// Watch starts watching path. Each successful reload is handed to load on
// the goroutine post runs functions on; post is usually the event loop's
// Post. Every attempt, failed or not, publishes event.TopicLayoutReloaded
// on bus when bus is not nil.
func Watch(path string, bus *event.Bus, post func(func()), load func(*Layout), log *logging.Logger) (*Reloader, error) {
	log = logging.OrDefault(log).WithComponent("layout")
	w, err := watcher.New(watcher.WithLogger(log))
	if err != nil {
		return nil, err
	}
	r := &Reloader{path: path, w: w, log: log, bus: bus, post: post, load: load}
	w.OnChange(r.onChange)
	if err := w.Watch(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reloader) onChange(ev watcher.Event) {
	if ev.Op != watcher.OpWrite {
		r.log.Warn("layout file removed, keeping current layout", "path", ev.Path)
		return
	}
	l, err := Load(r.path, r.log)
	r.post(func() {
		if err != nil {
			r.log.Error("reload layout", "error", err)
		} else {
			r.log.Info("layout reloaded", "path", r.path, "warnings", len(l.Warnings()))
			r.load(l)
		}
		if r.bus != nil {
			r.bus.Emit(event.TopicLayoutReloaded, event.Reloaded{Path: r.path, Err: err}, "layout")
		}
	})
}

// Close stops watching.
func (r *Reloader) Close() error {
	return r.w.Close()
}
