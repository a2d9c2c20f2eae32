//go:build linux

package inject

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/logging"
)

// DefaultUInputPath is where the uinput device node usually lives.
const DefaultUInputPath = "/dev/uinput"

// types needed from uinput.h
const (
	uinputMaxNameSize = 80
	uiDevCreate       = 0x5501
	uiDevDestroy      = 0x5502
	uiSetEvBit        = 0x40045564
	uiSetKeyBit       = 0x40045565
	busVirtual        = 0x06
	absSize           = 64
	keyMax            = 255
)

const (
	evSyn     = 0x00
	evKey     = 0x01
	synReport = 0
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// UInput injects key events through a virtual uinput keyboard. Characters
// and keysyms are mapped onto a US layout.
type UInput struct {
	f   *os.File
	log *logging.Logger
}

// OpenUInput creates the virtual device at path.
func OpenUInput(path string, log *logging.Logger) (*UInput, error) {
	if path == "" {
		path = DefaultUInputPath
	}
	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	u := &UInput{f: f, log: logging.OrDefault(log).WithComponent("uinput")}
	if err := u.setup(); err != nil {
		_ = f.Close()
		return nil, err
	}
	u.log.Info("virtual keyboard created", "path", path)
	return u, nil
}

func (u *UInput) ioctl(req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, u.f.Fd(), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func (u *UInput) setup() error {
	if err := u.ioctl(uiSetEvBit, evKey); err != nil {
		return fmt.Errorf("enable key events: %w", err)
	}
	if err := u.ioctl(uiSetEvBit, evSyn); err != nil {
		return fmt.Errorf("enable sync events: %w", err)
	}
	for code := uintptr(1); code <= keyMax; code++ {
		if err := u.ioctl(uiSetKeyBit, code); err != nil {
			return fmt.Errorf("enable key %d: %w", code, err)
		}
	}

	var dev uinputUserDev
	copy(dev.Name[:], "osk virtual keyboard")
	dev.ID = inputID{Bustype: busVirtual, Vendor: 0x1, Product: 0x1, Version: 1}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &dev); err != nil {
		return err
	}
	if _, err := u.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write device description: %w", err)
	}
	if err := u.ioctl(uiDevCreate, 0); err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

// Close destroys the virtual device.
func (u *UInput) Close() error {
	_ = u.ioctl(uiDevDestroy, 0)
	return u.f.Close()
}

func (u *UInput) emit(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]
	_, err := u.f.Write(buf)
	return err
}

func (u *UInput) key(code uint16, down bool) error {
	v := int32(0)
	if down {
		v = 1
	}
	if err := u.emit(evKey, code, v); err != nil {
		return err
	}
	return u.emit(evSyn, synReport, 0)
}

func (u *UInput) pressStroke(s stroke) error {
	if s.shift {
		if err := u.key(keyLeftShift, true); err != nil {
			return err
		}
	}
	return u.key(s.code, true)
}

func (u *UInput) releaseStroke(s stroke) error {
	if err := u.key(s.code, false); err != nil {
		return err
	}
	if s.shift {
		return u.key(keyLeftShift, false)
	}
	return nil
}

func (u *UInput) PressUnicode(r rune) error {
	s, ok := strokeForRune(r)
	if !ok {
		return fmt.Errorf("%q: %w", r, ErrUnmappable)
	}
	return u.pressStroke(s)
}

func (u *UInput) ReleaseUnicode(r rune) error {
	s, ok := strokeForRune(r)
	if !ok {
		return fmt.Errorf("%q: %w", r, ErrUnmappable)
	}
	return u.releaseStroke(s)
}

func (u *UInput) PressKeysym(ks key.Keysym) error {
	s, ok := strokeForKeysym(ks)
	if !ok {
		return fmt.Errorf("keysym %s: %w", ks.Name(), ErrUnmappable)
	}
	return u.pressStroke(s)
}

func (u *UInput) ReleaseKeysym(ks key.Keysym) error {
	s, ok := strokeForKeysym(ks)
	if !ok {
		return fmt.Errorf("keysym %s: %w", ks.Name(), ErrUnmappable)
	}
	return u.releaseStroke(s)
}

func (u *UInput) PressKeycode(code int) error {
	if code <= keycodeOffset {
		return fmt.Errorf("keycode %d: %w", code, ErrUnmappable)
	}
	return u.key(uint16(code-keycodeOffset), true)
}

func (u *UInput) ReleaseKeycode(code int) error {
	if code <= keycodeOffset {
		return fmt.Errorf("keycode %d: %w", code, ErrUnmappable)
	}
	return u.key(uint16(code-keycodeOffset), false)
}

// LockMod holds the modifier key down, or taps it for toggling modifiers.
func (u *UInput) LockMod(m key.Modifier) error {
	return u.modifier(m, true)
}

// UnlockMod releases the modifier key, or taps it again for toggling
// modifiers.
func (u *UInput) UnlockMod(m key.Modifier) error {
	return u.modifier(m, false)
}

func (u *UInput) modifier(m key.Modifier, lock bool) error {
	code, ok := modifierCodes[m]
	if !ok {
		u.log.Debug("modifier has no key", "modifier", m.String())
		return nil
	}
	if toggles(m) {
		if err := u.key(code, true); err != nil {
			return err
		}
		return u.key(code, false)
	}
	return u.key(code, lock)
}

var _ Sink = (*UInput)(nil)
