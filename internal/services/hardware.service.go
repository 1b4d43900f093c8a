package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"readiness/internal/models"

	"github.com/elastic/go-sysinfo"
	"github.com/elastic/go-sysinfo/types"
	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/gpu"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

var (
	errNoDisplayAdapter = errors.New("no display adapter found")
	errNotWindows       = errors.New("host is not running Windows")
	errNoProcessor      = errors.New("no processor reported")
	errUnsupported      = errors.New("not supported on " + runtime.GOOS)
)

// HostPlatform reads facts from the machine the process runs on
type HostPlatform struct {
	systemDrive string
	sysfsRoot   string
	log         logrus.FieldLogger
}

var _ Platform = (*HostPlatform)(nil)

// NewHostPlatform returns a Platform backed by the local host. An empty
// systemDrive selects the boot volume.
func NewHostPlatform(systemDrive string, log logrus.FieldLogger) *HostPlatform {
	if systemDrive == "" {
		systemDrive = DefaultSystemDrive()
	}
	return &HostPlatform{
		systemDrive: systemDrive,
		sysfsRoot:   "/sys",
		log:         log.WithField("component", "host-platform"),
	}
}

// DefaultSystemDrive returns the system volume, %SystemDrive%\ on Windows and / elsewhere
func DefaultSystemDrive() string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("SystemDrive")
		if drive == "" {
			drive = "C:"
		}
		return drive + `\`
	}
	return "/"
}

// Memory returns total physical memory
func (h *HostPlatform) Memory(ctx context.Context) (*models.MemoryInfo, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}
	return &models.MemoryInfo{TotalBytes: vm.Total}, nil
}

// Storage returns free space on the system volume
func (h *HostPlatform) Storage(ctx context.Context) (*models.StorageInfo, error) {
	usage, err := disk.UsageWithContext(ctx, h.systemDrive)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage for %s: %w", h.systemDrive, err)
	}
	return &models.StorageInfo{
		Path:       h.systemDrive,
		FreeBytes:  usage.Free,
		TotalBytes: usage.Total,
	}, nil
}

// Graphics returns the first display adapter
func (h *HostPlatform) Graphics(_ context.Context) (*models.GraphicsInfo, error) {
	info, err := ghw.GPU()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate display adapters: %w", err)
	}
	return graphicsFromInfo(info)
}

// OSVersion returns the Windows version and build
func (h *HostPlatform) OSVersion(_ context.Context) (*models.OSVersionInfo, error) {
	hi, err := sysinfo.Host()
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}
	return windowsVersion(hi.Info().OS)
}

// gopsutilProcessor reads the processor descriptor through gopsutil
func gopsutilProcessor(ctx context.Context) (*models.ProcessorInfo, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU info: %w", err)
	}
	if len(infos) == 0 {
		return nil, errNoProcessor
	}

	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU core count: %w", err)
	}

	// Address width is not fatal, the facet does not depend on it
	arch, err := host.KernelArch()
	if err != nil {
		arch = runtime.GOARCH
	}

	return &models.ProcessorInfo{
		MaxClockSpeedMHz: uint32(infos[0].Mhz),
		LogicalCores:     logical,
		Manufacturer:     infos[0].VendorID,
		Caption:          strings.TrimSpace(infos[0].ModelName),
		AddressWidth:     addressWidth(arch),
	}, nil
}

// addressWidth maps a kernel or GOARCH architecture name to its address width in bits
func addressWidth(arch string) uint16 {
	switch strings.ToLower(arch) {
	case "x86_64", "amd64", "aarch64", "arm64", "ppc64", "ppc64le", "s390x", "riscv64", "mips64", "mips64le", "loong64":
		return 64
	case "i386", "i686", "386", "x86", "arm", "armv6l", "armv7l", "mips", "mipsle":
		return 32
	default:
		return 0
	}
}

func graphicsFromInfo(info *gpu.Info) (*models.GraphicsInfo, error) {
	if info == nil || len(info.GraphicsCards) == 0 {
		return nil, errNoDisplayAdapter
	}

	card := info.GraphicsCards[0]
	name := card.Address
	if card.DeviceInfo != nil {
		switch {
		case card.DeviceInfo.Product != nil && card.DeviceInfo.Product.Name != "":
			name = card.DeviceInfo.Product.Name
		case card.DeviceInfo.Vendor != nil && card.DeviceInfo.Vendor.Name != "":
			name = card.DeviceInfo.Vendor.Name
		}
	}
	return &models.GraphicsInfo{Name: name}, nil
}

// windowsVersion turns go-sysinfo OS info into a "10.0.<build>" version string
// and a numeric build, as reported by Win32_OperatingSystem.
func windowsVersion(osInfo *types.OSInfo) (*models.OSVersionInfo, error) {
	if osInfo == nil {
		return nil, errors.New("no OS info reported")
	}
	if osInfo.Family != "windows" && osInfo.Type != "windows" {
		return nil, fmt.Errorf("%w: %s", errNotWindows, osInfo.Name)
	}

	// Build may carry the update revision, e.g. "22631.2861"
	buildStr, _, _ := strings.Cut(osInfo.Build, ".")
	build, err := strconv.Atoi(buildStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse build number %q: %w", osInfo.Build, err)
	}

	base := osInfo.Version
	if osInfo.Major != 0 {
		base = fmt.Sprintf("%d.%d", osInfo.Major, osInfo.Minor)
	}
	return &models.OSVersionInfo{
		Name:    osInfo.Name,
		Version: fmt.Sprintf("%s.%d", base, build),
		Build:   build,
	}, nil
}
