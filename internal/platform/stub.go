//go:build !windows

package platform

// genericPlatform serves Linux, macOS and the BSDs, whose descriptions
// come entirely from host.Info.
type genericPlatform struct{}

// New returns the Platform for the running OS.
func New() Platform { return genericPlatform{} }

func (genericPlatform) Name() string { return "generic" }

func (genericPlatform) OSEdition() (string, error) { return "", nil }
