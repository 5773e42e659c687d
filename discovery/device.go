package discovery

// Service-level device block defaults.
const (
	serviceManufacturer = "weirdTangent"
	serviceArea         = "House"
)

// DeviceOption adds an optional field to a device block.
type DeviceOption func(map[string]any)

// WithSWVersion sets the device firmware/software version. An empty
// version leaves the field out entirely.
func WithSWVersion(version string) DeviceOption {
	return func(d map[string]any) {
		if version != "" {
			d["sw_version"] = version
		}
	}
}

// WithSuggestedArea sets the area Home Assistant proposes when the
// device is first discovered. An empty area leaves the field out.
func WithSuggestedArea(area string) DeviceOption {
	return func(d map[string]any) {
		if area != "" {
			d["suggested_area"] = area
		}
	}
}

// Device builds a Home Assistant discovery device block.
//
// The required fields are always present: "name", "identifiers" (a
// single-element list holding id) and "manufacturer". Options add the
// optional fields.
func Device(name, id, manufacturer string, opts ...DeviceOption) map[string]any {
	d := map[string]any{
		"name":         name,
		"identifiers":  []string{id},
		"manufacturer": manufacturer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServiceDevice builds the device block for the service itself, the
// umbrella device that service-scoped entities attach to. The software
// version is always present, even when empty, so Home Assistant shows
// the field for every service device.
func ServiceDevice(serviceSlug, version string) map[string]any {
	d := Device(serviceSlug, serviceSlug, serviceManufacturer, WithSuggestedArea(serviceArea))
	d["sw_version"] = version
	return d
}
