package tools

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	topProcessCount   = 5
	maxConnectionRows = 5
)

// SystemInfo reports host information. param selects the report:
// "network" for interfaces, IO counters and connections, anything else
// for the basic system, CPU, memory, disk and process summary.
func SystemInfo(ctx context.Context, param, _ string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(param), "network") {
		return networkInfo(ctx)
	}
	return basicInfo(ctx)
}

func basicInfo(ctx context.Context) (string, error) {
	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return fmt.Sprintf("Error retrieving system information: %v", err), nil
	}

	lines := []string{"=== SYSTEM INFO ==="}
	lines = append(lines,
		fmt.Sprintf("OS: %s %s (%s)", hostInfo.Platform, hostInfo.PlatformVersion, hostInfo.KernelVersion),
		fmt.Sprintf("Hostname: %s", hostInfo.Hostname),
		fmt.Sprintf("Uptime: %s", formatUptime(hostInfo.Uptime)),
		fmt.Sprintf("Date/Time: %s", time.Now().Format("2006-01-02 15:04:05")),
	)

	lines = append(lines, "\n=== CPU INFO ===")
	processor := "Unknown"
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 && infos[0].ModelName != "" {
		processor = infos[0].ModelName
	}
	physical, _ := cpu.CountsWithContext(ctx, false)
	logical, _ := cpu.CountsWithContext(ctx, true)
	lines = append(lines,
		fmt.Sprintf("Processor: %s", processor),
		fmt.Sprintf("Cores: %d physical, %d logical", physical, logical),
		fmt.Sprintf("Usage: %s", cpuUsage(ctx)),
		fmt.Sprintf("Temperature: %s", temperature(ctx)),
	)

	lines = append(lines, "\n=== MEMORY INFO ===")
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		lines = append(lines,
			fmt.Sprintf("Total: %s", formatBytes(vm.Total)),
			fmt.Sprintf("Used: %s (%.1f%%)", formatBytes(vm.Used), vm.UsedPercent),
			fmt.Sprintf("Available: %s", formatBytes(vm.Available)),
		)
	}

	lines = append(lines, "\n=== DISK INFO ===")
	if partitions, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, part := range partitions {
			if runtime.GOOS == "windows" && slices.Contains(part.Opts, "cdrom") {
				continue
			}
			usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
			if err != nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("Drive %s: %s used of %s (%.1f%%)",
				part.Mountpoint, formatBytes(usage.Used), formatBytes(usage.Total), usage.UsedPercent))
		}
	}

	lines = append(lines, "\n=== TOP PROCESSES ===")
	lines = append(lines, topProcesses(ctx)...)

	return strings.Join(lines, "\n"), nil
}

func networkInfo(ctx context.Context) (string, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return fmt.Sprintf("Error retrieving network information: %v", err), nil
	}

	lines := []string{"=== NETWORK INTERFACES ==="}
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			ip, ipnet, err := net.ParseCIDR(addr.Addr)
			if err != nil || ip.To4() == nil {
				continue
			}
			lines = append(lines,
				fmt.Sprintf("Interface: %s", iface.Name),
				fmt.Sprintf("  IP Address: %s", ip),
				fmt.Sprintf("  Netmask: %s", net.IP(ipnet.Mask)),
			)
		}
	}

	lines = append(lines, "\n=== NETWORK STATISTICS ===")
	if counters, err := psnet.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		total := counters[0]
		lines = append(lines,
			fmt.Sprintf("Bytes Sent: %s", formatBytes(total.BytesSent)),
			fmt.Sprintf("Bytes Received: %s", formatBytes(total.BytesRecv)),
			fmt.Sprintf("Packets Sent: %d", total.PacketsSent),
			fmt.Sprintf("Packets Received: %d", total.PacketsRecv),
		)
	}

	lines = append(lines, "\n=== ACTIVE CONNECTIONS ===")
	shown := 0
	if conns, err := psnet.ConnectionsWithContext(ctx, "tcp"); err == nil {
		for _, conn := range conns {
			if shown == maxConnectionRows {
				break
			}
			if conn.Status != "ESTABLISHED" {
				continue
			}
			procName := "Unknown"
			if conn.Pid > 0 {
				if p, err := process.NewProcessWithContext(ctx, conn.Pid); err == nil {
					if name, err := p.NameWithContext(ctx); err == nil {
						procName = name
					}
				}
			}
			remote := "None"
			if conn.Raddr.IP != "" {
				remote = fmt.Sprintf("%s:%d", conn.Raddr.IP, conn.Raddr.Port)
			}
			lines = append(lines, fmt.Sprintf("Local: %s:%d -> Remote: %s (%s) - Process: %s",
				conn.Laddr.IP, conn.Laddr.Port, remote, conn.Status, procName))
			shown++
		}
	}
	if shown == 0 {
		lines = append(lines, "No active connections found")
	}

	return strings.Join(lines, "\n"), nil
}

func topProcesses(ctx context.Context) []string {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil
	}

	type sample struct {
		pid  int32
		name string
		cpu  float64
	}
	samples := make([]sample, 0, len(procs))
	for _, p := range procs {
		cpuPct, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		samples = append(samples, sample{pid: p.Pid, name: name, cpu: cpuPct})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].cpu > samples[j].cpu })

	if len(samples) > topProcessCount {
		samples = samples[:topProcessCount]
	}
	lines := make([]string, 0, len(samples))
	for _, s := range samples {
		lines = append(lines, fmt.Sprintf("PID %d: %s - CPU: %.1f%%", s.pid, s.name, s.cpu))
	}
	return lines
}

func cpuUsage(ctx context.Context) string {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(percents) == 0 {
		return "Not available"
	}
	return fmt.Sprintf("%.1f%%", percents[0])
}

func temperature(ctx context.Context) string {
	stats, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		return "Not available"
	}
	for _, stat := range stats {
		if stat.Temperature > 0 {
			return fmt.Sprintf("%.1f°C", stat.Temperature)
		}
	}
	return "Not available"
}

// formatUptime renders seconds of uptime at a precision matching its
// magnitude.
func formatUptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
}

// formatBytes renders a byte count with a human unit.
func formatBytes(n uint64) string {
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f PB", value)
}
