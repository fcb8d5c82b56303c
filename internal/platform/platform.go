// Package platform exposes the few OS details that gopsutil's host.Info
// does not report, such as the Windows edition.
package platform

// Platform reports OS details used to describe the machine.
type Platform interface {
	// OSEdition returns the edition label (e.g. "Professional"), or ""
	// where the OS has no editions.
	OSEdition() (string, error)

	// Name identifies the implementation in logs.
	Name() string
}
