package joysticks

import (
	"errors"
	"fmt"
	"os"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// eventSource is the slice of the evdev device the reader needs. Satisfied
// by *evdev.InputDevice; tests substitute a scripted source.
type eventSource interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Joystick reads the input state of a single device node opened for
// non-blocking reads. Absolute axes matching the two designated hat codes
// are classified as hats, every other absolute axis as a plain axis and
// every capable key as a button.
type Joystick struct {
	dev     eventSource
	axes    map[evdev.EvCode]struct{}
	buttons map[evdev.EvCode]struct{}
	hats    map[evdev.EvCode]struct{}
	ranges  map[evdev.EvCode]axisRange
}

type axisRange struct {
	min int32
	max int32
}

// OpenJoystick opens the device node at path and classifies its
// capabilities.
func OpenJoystick(path string) (j *Joystick, err error) {

	dev, err := openDevicePersistent(path)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}

	if err = dev.NonBlock(); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("set non-blocking mode on %s: %w", path, err)
	}

	j = &Joystick{
		dev:     dev,
		axes:    make(map[evdev.EvCode]struct{}),
		buttons: make(map[evdev.EvCode]struct{}),
		hats:    make(map[evdev.EvCode]struct{}),
		ranges:  make(map[evdev.EvCode]axisRange),
	}

	// Devices without absolute axes report no absinfo at all.
	if infos, err := dev.AbsInfos(); err == nil {
		for code, info := range infos {
			j.ranges[code] = axisRange{min: info.Minimum, max: info.Maximum}
			if code == evdev.ABS_HAT0X || code == evdev.ABS_HAT0Y {
				j.hats[code] = struct{}{}
			} else {
				j.axes[code] = struct{}{}
			}
		}
	}

	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		j.buttons[code] = struct{}{}
	}

	return j, nil
}

// Poll drains all pending events and returns the codes that changed,
// normalized to stable ranges. It never waits: with no events pending the
// returned update is empty. Only genuine I/O failures produce an error.
func (j *Joystick) Poll() (u Update, err error) {

	u = newUpdate()

	for {
		event, err := j.dev.ReadOne()
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return u, nil
			}
			return Update{}, fmt.Errorf("read event: %w", err)
		}

		switch event.Type {
		case evdev.EV_KEY:
			if _, ok := j.buttons[event.Code]; !ok {
				continue
			}
			if event.Value == 1 {
				u.Buttons[uint16(event.Code)] = 1
			} else {
				u.Buttons[uint16(event.Code)] = 0
			}

		case evdev.EV_ABS:
			r, ok := j.ranges[event.Code]
			if !ok {
				continue
			}
			if _, isHat := j.hats[event.Code]; isHat {
				u.Hats[uint16(event.Code)] = hatDirection(event.Value)
			} else if _, isAxis := j.axes[event.Code]; isAxis {
				u.Axes[uint16(event.Code)] = normalizeAxis(event.Value, r.min, r.max)
			}
		}
	}
}

// Close releases the device node.
func (j *Joystick) Close() error {
	return j.dev.Close()
}

// openDevicePersistent retries briefly on permission errors: freshly
// connected nodes can be owned by root until udev rules catch up.
func openDevicePersistent(path string) (dev *evdev.InputDevice, err error) {

	for i := 0; i < 5; i++ {
		if dev, err = evdev.Open(path); err != nil {
			if errors.Is(err, os.ErrPermission) && i < 4 {
				time.Sleep(200 * time.Millisecond)
				continue
			}
			return nil, err
		}
		break
	}
	return dev, err
}
