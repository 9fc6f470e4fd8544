// Package meters holds the serial profiles of the supported meter families.
package meters

import (
	"sort"
	"time"

	"github.com/NotCoffee418/glucometer_serial/pkg/serialdevice"
)

// Generic PL2303 cable, shipped with the OneTouch Ultra family.
const prolificCable = "067b:2303"

var profiles = map[string]serialdevice.Profile{
	"otultra2": {
		Name:           "otultra2",
		BaudRate:       9600,
		DefaultCableID: prolificCable,
		ReadTimeout:    500 * time.Millisecond,
	},
	"otultraeasy": {
		Name:           "otultraeasy",
		BaudRate:       38400,
		DefaultCableID: prolificCable,
		ReadTimeout:    500 * time.Millisecond,
	},
	"otverioiq": {
		Name:     "otverioiq",
		BaudRate: 38400,
		// Embedded CP210x bridge
		DefaultCableID: "10c4:85a7",
		ReadTimeout:    500 * time.Millisecond,
	},
	"fsoptium": {
		Name:           "fsoptium",
		BaudRate:       9600,
		DefaultCableID: "1a61:3420",
	},
	// Generic serial cable, no default to look for.
	"sdcodefree": {
		Name:     "sdcodefree",
		BaudRate: 38400,
	},
}

// Lookup returns the profile registered under name.
func Lookup(name string) (serialdevice.Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Names lists the registered drivers in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
