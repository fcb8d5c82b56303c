//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const currentVersionKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`

// windowsPlatform reads edition details from the registry.
type windowsPlatform struct{}

// New returns the Platform for the running OS.
func New() Platform { return windowsPlatform{} }

func (windowsPlatform) Name() string { return "windows" }

// OSEdition reads EditionID (e.g. "Professional", "ServerStandard") from
// HKLM\SOFTWARE\Microsoft\Windows NT\CurrentVersion.
func (windowsPlatform) OSEdition() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open CurrentVersion key: %w", err)
	}
	defer k.Close()

	edition, _, err := k.GetStringValue("EditionID")
	if err != nil {
		return "", fmt.Errorf("read EditionID: %w", err)
	}
	return edition, nil
}
