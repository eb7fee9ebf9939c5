package joysticks

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"
)

// evdevTransport backs the pool with the kernel input subsystem.
type evdevTransport struct{}

func (evdevTransport) List() (devices []DeviceInfo, err error) {

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	for _, p := range paths {
		devices = append(devices, DeviceInfo{Path: p.Path, Name: p.Name})
	}
	return devices, nil
}

func (evdevTransport) Open(path string) (Reader, error) {
	return OpenJoystick(path)
}

// ListConnected returns path and kernel-reported name for every input
// device node currently present.
func ListConnected() ([]DeviceInfo, error) {
	return evdevTransport{}.List()
}
