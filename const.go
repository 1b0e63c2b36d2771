package rammer

import "fmt"

// Component identifies the part of rammer a log entry comes from
type Component uint16

const (
	MainComponent Component = iota + 10
	BootstrapComponent
	AllocatorComponent
	VolumeComponent
)

var Type2Components = map[Component]string{
	MainComponent:      "main",
	BootstrapComponent: "bootstrap",
	AllocatorComponent: "allocator",
	VolumeComponent:    "volume",
}

func (c Component) String() string {
	if name, exists := Type2Components[c]; exists {
		return name
	}
	return fmt.Sprintf("component(%d)", uint16(c))
}
