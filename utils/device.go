package utils

import (
	"fmt"
	"strings"

	"github.com/notargets/gocca"
)

// Device properties in order of preference for "auto"
var deviceBackends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// DeviceProperties maps a backend name to its OCCA property string. An
// argument starting with '{' is passed through unchanged.
func DeviceProperties(mode string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(mode), "{") {
		return mode, nil
	}
	switch strings.ToLower(mode) {
	case "serial":
		return deviceBackends[2], nil
	case "openmp":
		return deviceBackends[0], nil
	case "cuda":
		return deviceBackends[1], nil
	}
	return "", fmt.Errorf("unknown device mode %q, want auto, serial, openmp, cuda or a property string", mode)
}

// CreateDevice opens an OCCA device. "auto" tries OpenMP, then CUDA, then
// Serial.
func CreateDevice(mode string) (*gocca.OCCADevice, error) {
	if strings.ToLower(mode) == "auto" {
		var lastErr error
		for _, props := range deviceBackends {
			device, err := gocca.NewDevice(props)
			if err == nil {
				return device, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("no OCCA backend available: %w", lastErr)
	}
	props, err := DeviceProperties(mode)
	if err != nil {
		return nil, err
	}
	device, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("opening %s device: %w", mode, err)
	}
	return device, nil
}
