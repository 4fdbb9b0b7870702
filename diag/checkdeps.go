// Package diag implements the --check-deps startup diagnostic and the
// startup banner.
package diag

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/badu/mtgestured/config"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// Report is the result of a dependency check: missing names whatever
// action executors could not be located on PATH.
type Report struct {
	HostInfo      string
	MemoryPercent float64
	Missing       []string
	DeviceBusy    bool
}

// OK reports whether every configured dependency was found.
func (r Report) OK() bool {
	return len(r.Missing) == 0
}

// Check inspects cfg's action map for any non-reserved action string and
// confirms its first whitespace-split token resolves on PATH via
// exec.LookPath, exactly the tokenisation action.Dispatcher itself performs.
// It also gathers host/platform info for the banner using gopsutil.
// devicePath, if non-empty, is probed with ExclusiveHolder so a device
// already held by another process is surfaced before the pipeline tries to
// open it.
func Check(cfg *config.Config, devicePath string) Report {
	var report Report

	if devicePath != "" {
		report.DeviceBusy = ExclusiveHolder(devicePath)
	}

	info, err := host.Info()
	if err == nil {
		report.HostInfo = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	} else {
		report.HostInfo = "unknown host"
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		report.MemoryPercent = vm.UsedPercent
	}

	seen := map[string]bool{}
	for _, action := range cfg.Actions {
		if action == "" || isReserved(action) {
			continue
		}
		args := strings.Fields(action)
		if len(args) == 0 {
			continue
		}
		bin := args[0]
		if seen[bin] {
			continue
		}
		seen[bin] = true
		if _, err := exec.LookPath(bin); err != nil {
			report.Missing = append(report.Missing, bin)
		}
	}
	return report
}

func isReserved(action string) bool {
	switch action {
	case "click", "right_click", "middle_click", "scroll_vertical", "scroll_horizontal":
		return true
	default:
		return false
	}
}

// Banner writes the startup banner: device path and a configuration summary.
func Banner(devicePath string, cfg *config.Config, report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mtgestured starting\n")
	fmt.Fprintf(&b, "  device:  %s\n", devicePath)
	fmt.Fprintf(&b, "  host:    %s\n", report.HostInfo)
	fmt.Fprintf(&b, "  memory:  %.1f%% used\n", report.MemoryPercent)
	fmt.Fprintf(&b, "  actions: %d configured\n", len(cfg.Actions))
	if report.DeviceBusy {
		fmt.Fprintf(&b, "  warning: device node appears to be held by another process\n")
	}
	return b.String()
}

// ExclusiveHolder reports whether path looks like it is already held
// exclusively by another process, by attempting and immediately releasing a
// plain read-only open; any open failure is reported as held. gopsutil does not expose per-fd-holder introspection
// portably, so this is a best-effort probe rather than a proper lsof query.
func ExclusiveHolder(path string) bool {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return true
	}
	f.Close()
	return false
}
