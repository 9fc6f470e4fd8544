package transport

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes an enumerated serial port.
type PortInfo struct {
	Name        string
	Description string
	// e.g. "USB VID:PID=067B:2303 SER=A1B2"
	HardwareID string
	IsUSB      bool
}

// ListPorts enumerates the serial ports on this machine, sorted by name.
func (r *Resolver) ListPorts() ([]PortInfo, error) {
	details, err := r.listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return describePorts(details), nil
}

func describePorts(details []*enumerator.PortDetails) []PortInfo {
	infos := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		description := d.Product
		if description == "" {
			description = "n/a"
		}
		infos = append(infos, PortInfo{
			Name:        d.Name,
			Description: description,
			HardwareID:  hardwareID(d),
			IsUSB:       d.IsUSB,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func hardwareID(d *enumerator.PortDetails) string {
	if !d.IsUSB {
		return "n/a"
	}
	id := fmt.Sprintf("USB VID:PID=%s:%s", strings.ToUpper(d.VID), strings.ToUpper(d.PID))
	if d.SerialNumber != "" {
		id += " SER=" + d.SerialNumber
	}
	return id
}
