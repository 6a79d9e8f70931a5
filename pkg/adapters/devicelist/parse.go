package devicelist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/duocam/pkg/ports"
)

var (
	// [AVFoundation indev @ 0x7f8] [0] FaceTime HD Camera
	avfoundationDeviceRe = regexp.MustCompile(`\[([0-9]+)\] (.*)`)

	// [dshow @ 000001] "Integrated Camera" (video)
	dshowDeviceRe = regexp.MustCompile(`"([^"]+)" \((video|audio|none)\)`)

	// [dshow @ 000001]  "Integrated Camera"
	dshowLegacyDeviceRe = regexp.MustCompile(`^\[[^\]]*\]\s+"([^"]+)"\s*$`)
)

// ParseAVFoundation extracts video devices from
// "ffmpeg -f avfoundation -list_devices true -i ''" output.
// Screen capture inputs are skipped.
func ParseAVFoundation(output string) []ports.Device {
	var devices []ports.Device
	inVideo := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "AVFoundation video devices") {
			inVideo = true
			continue
		}
		if strings.Contains(line, "AVFoundation audio devices") {
			break
		}
		if !inVideo {
			continue
		}

		m := avfoundationDeviceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[2])
		if strings.HasPrefix(name, "Capture screen") {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		devices = append(devices, ports.Device{
			Index: len(devices),
			Name:  name,
			ID:    fmt.Sprintf("%d:none", idx),
		})
	}
	return devices
}

// ParseDShow extracts video devices from
// "ffmpeg -f dshow -list_devices true -i dummy" output.
// Both the tagged format of current ffmpeg and the older sectioned format are understood.
func ParseDShow(output string) []ports.Device {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	tagged := false
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if m := dshowDeviceRe.FindStringSubmatch(line); m != nil {
			tagged = true
			if m[2] == "video" {
				add(m[1])
			}
			continue
		}
		if tagged {
			continue
		}

		switch {
		case strings.Contains(line, "DirectShow video devices"):
			section = "video"
			continue
		case strings.Contains(line, "DirectShow audio devices"):
			section = "audio"
			continue
		}
		if section != "video" || strings.Contains(line, "Alternative name") {
			continue
		}
		if m := dshowLegacyDeviceRe.FindStringSubmatch(line); m != nil {
			add(m[1])
		}
	}

	devices := make([]ports.Device, 0, len(names))
	for i, name := range names {
		devices = append(devices, ports.Device{
			Index: i,
			Name:  name,
			ID:    "video=" + name,
		})
	}
	return devices
}
