package joysticks

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const defaultDeviceName = "Unknown Device"

// DeviceItem identifies a single axis, button or hat. Code is the hardware
// event code, Alias is a cosmetic label with no effect on matching.
type DeviceItem struct {
	Code  uint16 `toml:"code"`
	Alias string `toml:"alias,omitempty"`
}

// DeviceDescription declares the input channels a device exposes. Name is
// the join key used to match configured devices against connected hardware.
type DeviceDescription struct {
	Name        string       `toml:"device_name"`
	Author      string       `toml:"author,omitempty"`
	Created     string       `toml:"created,omitempty"`
	Description string       `toml:"description,omitempty"`
	Axes        []DeviceItem `toml:"axes,omitempty"`
	Buttons     []DeviceItem `toml:"buttons,omitempty"`
	Hats        []DeviceItem `toml:"hats,omitempty"`
}

// LoadDescription reads and validates a single TOML device description.
// A missing device_name falls back to "Unknown Device".
func LoadDescription(path string) (desc DeviceDescription, err error) {

	content, err := os.ReadFile(path)
	if err != nil {
		return desc, fmt.Errorf("read description %s: %w", path, err)
	}

	if err = toml.Unmarshal(content, &desc); err != nil {
		return DeviceDescription{}, fmt.Errorf("parse description %s: %w", path, err)
	}

	if desc.Name == "" {
		desc.Name = defaultDeviceName
	}

	if err = desc.Validate(); err != nil {
		return DeviceDescription{}, err
	}

	return desc, nil
}

// LoadDescriptions reads several description files at once.
func LoadDescriptions(paths ...string) (descs []DeviceDescription, err error) {

	for _, path := range paths {
		desc, err := LoadDescription(path)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// Validate checks that codes are unique within each category.
func (d DeviceDescription) Validate() (err error) {

	categories := []struct {
		label string
		items []DeviceItem
	}{
		{"axis", d.Axes},
		{"button", d.Buttons},
		{"hat", d.Hats},
	}

	for _, cat := range categories {
		seen := make(map[uint16]struct{}, len(cat.items))
		for _, item := range cat.items {
			if _, ok := seen[item.Code]; ok {
				return fmt.Errorf(errDuplicateCode, d.Name, cat.label, item.Code)
			}
			seen[item.Code] = struct{}{}
		}
	}
	return nil
}

// BuildState returns the zeroed state for this description: one entry per
// declared code, all values neutral.
func (d DeviceDescription) BuildState() *State {

	state := newState()

	for _, axis := range d.Axes {
		state.Axes[axis.Code] = 0
	}
	for _, button := range d.Buttons {
		state.Buttons[button.Code] = 0
	}
	for _, hat := range d.Hats {
		state.Hats[hat.Code] = 0
	}
	return state
}
