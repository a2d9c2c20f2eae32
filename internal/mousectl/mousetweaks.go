package mousectl

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
)

// Mousetweaks D-Bus names.
const (
	mtBusName   = "org.gnome.Mousetweaks"
	mtPath      = dbus.ObjectPath("/org/gnome/Mousetweaks")
	mtInterface = "org.gnome.Mousetweaks"
	mtProperty  = "ClickType"

	propertiesInterface = "org.freedesktop.DBus.Properties"
)

// Click types as Mousetweaks encodes them. Drag, double and single share
// the ClickType values.
const (
	mtClickRight  = 0
	mtClickMiddle = 4
)

// launchDelay is how long to wait before starting the daemon ourselves.
const launchDelay = 500 * time.Millisecond

// clickTypeStore reads and writes the daemon's ClickType property.
type clickTypeStore interface {
	ClickType() (int32, error)
	SetClickType(v int32) error
}

// Mousetweaks controls hover (dwell) clicking through the Mousetweaks
// daemon. All state changes happen on the event loop; D-Bus signals are
// received on a separate goroutine and posted over.
type Mousetweaks struct {
	sched   loop.Scheduler
	log     *logging.Logger
	conn    *dbus.Conn
	cancel  context.CancelFunc
	store   clickTypeStore
	enabled bool

	clickType int32
	notify    []func()
	launch    loop.Timer

	// Launch starts the daemon. It defaults to running "mousetweaks".
	Launch func() error
}

// NewMousetweaks connects to the session bus and watches the daemon. It
// fails with ErrNoDaemonBus when there is no session bus.
func NewMousetweaks(sched loop.Scheduler, log *logging.Logger) (*Mousetweaks, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDaemonBus, err)
	}
	mt := newMousetweaks(sched, log)
	mt.conn = conn

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, mtBusName),
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("watch %s: %w", mtBusName, err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(mtPath),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("watch %s properties: %w", mtBusName, err)
	}

	var running bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, mtBusName).Store(&running); err != nil {
		mt.log.Debug("name owner query failed", "error", err)
	}
	mt.setConnection(running)

	ctx, cancel := context.WithCancel(context.Background())
	mt.cancel = cancel
	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	go mt.receive(ctx, signals)

	return mt, nil
}

func newMousetweaks(sched loop.Scheduler, log *logging.Logger) *Mousetweaks {
	mt := &Mousetweaks{
		sched:     sched,
		log:       logging.OrDefault(log).WithComponent("mousetweaks"),
		clickType: int32(Single),
	}
	mt.Launch = func() error {
		return exec.Command("mousetweaks").Start()
	}
	return mt
}

func (mt *Mousetweaks) receive(ctx context.Context, signals <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			mt.sched.Post(func() { mt.handleSignal(sig) })
		}
	}
}

func (mt *Mousetweaks) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case "org.freedesktop.DBus.NameOwnerChanged":
		if len(sig.Body) < 3 {
			return
		}
		name, _ := sig.Body[0].(string)
		oldOwner, _ := sig.Body[1].(string)
		if name == mtBusName {
			mt.nameOwnerChanged(oldOwner == "")
		}
	case propertiesInterface + ".PropertiesChanged":
		if len(sig.Body) < 2 {
			return
		}
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		if v, ok := changed[mtProperty]; ok {
			if ct, ok := variantInt32(v); ok {
				mt.clickTypeChanged(ct)
			}
		}
	}
}

func variantInt32(v dbus.Variant) (int32, bool) {
	switch x := v.Value().(type) {
	case int32:
		return x, true
	case uint32:
		return int32(x), true
	case int64:
		return int32(x), true
	}
	return 0, false
}

func (mt *Mousetweaks) setConnection(active bool) {
	if !active {
		mt.store = nil
		mt.clickType = int32(Single)
		return
	}
	if mt.conn != nil {
		mt.store = &busClickType{obj: mt.conn.Object(mtBusName, mtPath)}
	}
	if mt.store == nil {
		return
	}
	ct, err := mt.store.ClickType()
	if err != nil {
		mt.log.Warn("read click type", "error", err)
		return
	}
	mt.clickType = ct
}

func (mt *Mousetweaks) nameOwnerChanged(active bool) {
	mt.log.Debug("daemon ownership changed", "running", active)
	if active && mt.launch != nil {
		mt.launch.Stop()
		mt.launch = nil
	}
	mt.setConnection(active)
	mt.notifyAll()
}

func (mt *Mousetweaks) clickTypeChanged(ct int32) {
	mt.clickType = ct
	mt.notifyAll()
}

func (mt *Mousetweaks) notifyAll() {
	for _, fn := range mt.notify {
		fn()
	}
}

// Close stops watching the bus.
func (mt *Mousetweaks) Close() error {
	if mt.cancel != nil {
		mt.cancel()
	}
	if mt.launch != nil {
		mt.launch.Stop()
	}
	if mt.conn != nil {
		return mt.conn.Close()
	}
	return nil
}

// IsActive reports whether hover clicking is enabled and the daemon is
// reachable.
func (mt *Mousetweaks) IsActive() bool {
	return mt.enabled && mt.store != nil
}

// Running reports whether the daemon is on the bus.
func (mt *Mousetweaks) Running() bool {
	return mt.store != nil
}

// SetActive turns hover clicking on or off, launching the daemon after a
// short delay when it isn't running yet.
func (mt *Mousetweaks) SetActive(active bool) {
	mt.enabled = active
	if mt.launch != nil {
		mt.launch.Stop()
		mt.launch = nil
	}
	if active && mt.store == nil {
		mt.launch = mt.sched.After(launchDelay, func() {
			mt.launch = nil
			if err := mt.Launch(); err != nil {
				mt.log.Warn("launch mousetweaks", "error", err)
			}
		})
	}
	mt.notifyAll()
}

// SupportsClickParams accepts every combination; Mousetweaks handles middle
// clicks too.
func (mt *Mousetweaks) SupportsClickParams(Button, ClickType) bool {
	return true
}

func (mt *Mousetweaks) MapPrimaryClick(b Button, t ClickType) {
	ct := int32(t)
	switch b {
	case Secondary:
		ct = mtClickRight
	case Middle:
		ct = mtClickMiddle
	}
	if ct == mt.clickType {
		return
	}
	mt.clickType = ct
	if mt.store == nil {
		return
	}
	if err := mt.store.SetClickType(ct); err != nil {
		mt.log.Warn("set click type", "error", err)
	}
}

func (mt *Mousetweaks) ClickButton() Button {
	switch mt.clickType {
	case mtClickRight:
		return Secondary
	case mtClickMiddle:
		return Middle
	}
	return Primary
}

func (mt *Mousetweaks) ClickType() ClickType {
	switch mt.clickType {
	case mtClickRight, mtClickMiddle:
		return Single
	}
	return ClickType(mt.clickType)
}

func (mt *Mousetweaks) StateNotifyAdd(fn func()) {
	mt.notify = append(mt.notify, fn)
}

var _ Controller = (*Mousetweaks)(nil)

type busClickType struct {
	obj dbus.BusObject
}

func (b *busClickType) ClickType() (int32, error) {
	v, err := b.obj.GetProperty(mtInterface + "." + mtProperty)
	if err != nil {
		return 0, err
	}
	ct, ok := variantInt32(v)
	if !ok {
		return 0, fmt.Errorf("unexpected %s type %s", mtProperty, v.Signature())
	}
	return ct, nil
}

func (b *busClickType) SetClickType(v int32) error {
	return b.obj.SetProperty(mtInterface+"."+mtProperty, dbus.MakeVariant(v))
}
