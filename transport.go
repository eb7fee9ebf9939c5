package joysticks

// DeviceInfo describes one connected input device node.
type DeviceInfo struct {
	Path string
	Name string
}

// Reader drains pending readings from one opened device.
type Reader interface {
	Poll() (Update, error)
	Close() error
}

// Transport enumerates connected devices and opens readers for them. The
// evdev implementation is the default; tests substitute a scripted one.
type Transport interface {
	List() ([]DeviceInfo, error)
	Open(path string) (Reader, error)
}
