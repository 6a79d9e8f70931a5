package devicelist

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/user/duocam/pkg/ports"
)

// SysfsLister lists video4linux capture nodes.
type SysfsLister struct {
	devDir   string
	classDir string
}

// NewSysfs creates a lister reading /dev and /sys/class/video4linux.
func NewSysfs() *SysfsLister {
	return &SysfsLister{devDir: "/dev", classDir: "/sys/class/video4linux"}
}

// ListDevices globs /dev/video* in numeric order. Nodes whose sysfs index is
// not 0 are metadata nodes of another device and are skipped.
func (l *SysfsLister) ListDevices(ctx context.Context) ([]ports.Device, error) {
	paths, err := filepath.Glob(filepath.Join(l.devDir, "video*"))
	if err != nil {
		return nil, err
	}

	type node struct {
		num  int
		path string
	}
	var nodes []node
	for _, path := range paths {
		num, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "video"))
		if err != nil {
			continue
		}
		nodes = append(nodes, node{num: num, path: path})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].num < nodes[j].num })

	devices := make([]ports.Device, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		base := filepath.Base(n.path)
		if idx := readFirstLine(filepath.Join(l.classDir, base, "index")); idx != "" && idx != "0" {
			continue
		}
		name := readFirstLine(filepath.Join(l.classDir, base, "name"))
		if name == "" {
			name = n.path
		}
		devices = append(devices, ports.Device{
			Index: len(devices),
			Name:  name,
			ID:    n.path,
		})
	}
	return devices, nil
}

func readFirstLine(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	line := string(raw)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
