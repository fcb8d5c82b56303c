// Package identity resolves the machine fingerprint sent with every login
// and snapshot: hostname, first link-layer address and a human-readable
// OS description.
//
// None of the resolvers fail. Each failure path returns a documented
// sentinel (UnknownHostname, ZeroMAC, UnknownOS) and is logged.
package identity

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/models"
	"github.com/rocks-app/agent/internal/platform"
)

// Sentinels returned when a lookup fails.
const (
	UnknownHostname = "unknown"
	UnknownOS       = "Unknown OS"
	ZeroMAC         = "00:00:00:00:00:00"
)

// Resolver derives the MachineIdentity of the current host. The combined
// identity is resolved once and cached for the life of the Resolver.
type Resolver struct {
	logger   *zap.Logger
	platform platform.Platform
	goos     string

	interfaces func(ctx context.Context) (net.InterfaceStatList, error)
	hostID     func(ctx context.Context) (string, error)
	hostname   func() (string, error)
	hostInfo   func(ctx context.Context) (*host.InfoStat, error)

	once   sync.Once
	cached models.MachineIdentity
}

// NewResolver creates a Resolver backed by gopsutil and the OS.
// Pass a nil platform to skip edition enrichment.
func NewResolver(p platform.Platform, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:     logger.Named("identity"),
		platform:   p,
		goos:       runtime.GOOS,
		interfaces: net.InterfacesWithContext,
		hostID:     host.HostIDWithContext,
		hostname:   os.Hostname,
		hostInfo:   host.InfoWithContext,
	}
}

// Resolve returns the cached identity, resolving it on first use.
func (r *Resolver) Resolve(ctx context.Context) models.MachineIdentity {
	r.once.Do(func() {
		r.cached = models.MachineIdentity{
			Hostname:        r.ResolveHostname(),
			MACAddress:      r.ResolveMAC(ctx),
			OperatingSystem: r.ResolveOSDescription(ctx),
		}
		r.logger.Debug("Machine identity resolved",
			zap.String("hostname", r.cached.Hostname),
			zap.String("mac_address", r.cached.MACAddress),
			zap.String("os", r.cached.OperatingSystem))
	})
	return r.cached
}

// ResolveMAC returns the first non-zero link-layer address of the host's
// interfaces. When none is found the address is derived from the host's
// unique machine identifier. ZeroMAC is returned only if both paths fail.
func (r *Resolver) ResolveMAC(ctx context.Context) (mac string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("MAC address lookup panicked", zap.Any("panic", rec))
			mac = ZeroMAC
		}
	}()

	ifaces, err := r.interfaces(ctx)
	if err != nil {
		r.logger.Warn("Failed to list network interfaces", zap.Error(err))
	}
	for _, iface := range ifaces {
		addr := NormalizeMAC(iface.HardwareAddr)
		if usableMAC(addr) {
			return addr
		}
	}

	id, err := r.hostID(ctx)
	if err != nil || strings.TrimSpace(id) == "" {
		r.logger.Error("Failed to derive MAC address from host id", zap.Error(err))
		return ZeroMAC
	}
	return MACFromNodeID(id)
}

// ResolveHostname returns the OS hostname, or UnknownHostname.
func (r *Resolver) ResolveHostname() string {
	name, err := r.hostname()
	if err != nil || name == "" {
		r.logger.Error("Failed to get hostname", zap.Error(err))
		return UnknownHostname
	}
	return name
}

// ResolveOSDescription returns the OS family and release with
// family-specific detail, or UnknownOS.
func (r *Resolver) ResolveOSDescription(ctx context.Context) (desc string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("OS lookup panicked", zap.Any("panic", rec))
			desc = UnknownOS
		}
	}()

	info, err := r.hostInfo(ctx)
	if err != nil || info == nil {
		r.logger.Error("Failed to get OS information", zap.Error(err))
		return UnknownOS
	}

	var edition string
	if r.platform != nil {
		edition, err = r.platform.OSEdition()
		if err != nil {
			r.logger.Debug("OS edition not available",
				zap.String("platform", r.platform.Name()),
				zap.Error(err))
			edition = ""
		}
	}
	return describeOS(r.goos, info, edition)
}

// NormalizeMAC converts hyphen-separated addresses (as reported on Windows)
// to the canonical colon-separated form. Letter case is preserved.
func NormalizeMAC(addr string) string {
	return strings.ReplaceAll(strings.TrimSpace(addr), "-", ":")
}

// MACFromNodeID derives a stable, locally administered unicast MAC-like
// address from a host-unique identifier.
func MACFromNodeID(id string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(id))))
	b := sum[:6]
	b[0] = (b[0] | 0x02) &^ 0x01
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

func usableMAC(addr string) bool {
	return strings.Trim(addr, "0:") != ""
}

// describeOS formats the OS description for the given GOOS.
//   - windows: "Windows 10.0.19045 Build 19045 (Professional)"
//   - linux:   "Linux ubuntu 22.04 (6.5.0-14-generic)"
//   - darwin:  "macOS 14.2.1"
func describeOS(goos string, info *host.InfoStat, edition string) string {
	switch goos {
	case "windows":
		if edition != "" {
			return fmt.Sprintf("Windows %s (%s)", info.PlatformVersion, edition)
		}
		return "Windows " + info.PlatformVersion
	case "linux":
		if info.Platform != "" {
			return strings.Join(strings.Fields(fmt.Sprintf("Linux %s %s (%s)",
				info.Platform, info.PlatformVersion, info.KernelVersion)), " ")
		}
		return "Linux " + info.KernelVersion
	case "darwin":
		if info.PlatformVersion != "" {
			return "macOS " + info.PlatformVersion
		}
		return "macOS " + info.KernelVersion
	default:
		family := info.OS
		if family == "" {
			family = goos
		}
		return strings.TrimSpace(family + " " + info.KernelVersion)
	}
}
