// Package codecdetect inspects the tracks of MP4 recordings.
package codecdetect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoTracks is returned for a file without a movie box.
var ErrNoTracks = errors.New("codecdetect: no tracks found")

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecMPEG4   Codec = "mpeg4"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// Track describes one track of a recording.
type Track struct {
	ID          uint32
	Kind        string // video, audio or the raw handler type
	Codec       Codec
	SampleEntry string // e.g. avc1, mp4v
	Width       int
	Height      int
	Timescale   uint32
	Duration    time.Duration
	Samples     int
	FPS         float64
}

// Report describes a recording.
type Report struct {
	Path       string
	Fragmented bool
	Duration   time.Duration
	Tracks     []Track
}

// VideoTracks returns the video tracks of the report.
func (r Report) VideoTracks() []Track {
	var tracks []Track
	for _, t := range r.Tracks {
		if t.Kind == "video" {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// InspectFile reports the tracks of an MP4 file.
func InspectFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	report, err := Inspect(f)
	report.Path = path
	return report, err
}

// Inspect reports the tracks of MP4 data.
func Inspect(reader io.Reader) (Report, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Report{}, fmt.Errorf("decode mp4: %w", err)
	}

	report := Report{Fragmented: mp4File.IsFragmented()}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return report, ErrNoTracks
	}

	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		report.Duration = scale(moov.Mvhd.Duration, moov.Mvhd.Timescale)
	}
	for _, trak := range moov.Traks {
		report.Tracks = append(report.Tracks, inspectTrack(trak))
	}
	if len(report.Tracks) == 0 {
		return report, ErrNoTracks
	}
	return report, nil
}

// DetectFromFile detects the codec of the first video track of an MP4 file.
func DetectFromFile(path string) (Codec, error) {
	report, err := InspectFile(path)
	if err != nil {
		return CodecUnknown, err
	}
	for _, t := range report.VideoTracks() {
		return t.Codec, nil
	}
	return CodecUnknown, fmt.Errorf("no video track found")
}

func inspectTrack(trak *mp4.TrakBox) Track {
	var t Track

	if trak.Tkhd != nil {
		t.ID = trak.Tkhd.TrackID
		t.Width = int(trak.Tkhd.Width >> 16)
		t.Height = int(trak.Tkhd.Height >> 16)
	}
	if trak.Mdia == nil {
		return t
	}

	if trak.Mdia.Hdlr != nil {
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			t.Kind = "video"
		case "soun":
			t.Kind = "audio"
		default:
			t.Kind = trak.Mdia.Hdlr.HandlerType
		}
	}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		t.Timescale = mdhd.Timescale
		t.Duration = scale(mdhd.Duration, mdhd.Timescale)
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return t
	}
	stbl := trak.Mdia.Minf.Stbl

	if stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			t.SampleEntry = child.Type()
			t.Codec = codecFor(child.Type())
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && t.Width == 0 {
				t.Width = int(vse.Width)
				t.Height = int(vse.Height)
			}
			break
		}
	}
	if stbl.Stsz != nil {
		t.Samples = int(stbl.Stsz.SampleNumber)
	}
	if t.Kind == "video" && t.Samples > 0 && t.Duration > 0 {
		t.FPS = float64(t.Samples) / t.Duration.Seconds()
	}
	return t
}

func codecFor(sampleEntry string) Codec {
	switch sampleEntry {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "mp4v":
		return CodecMPEG4
	case "av01":
		return CodecAV1
	default:
		return CodecUnknown
	}
}

func scale(value uint64, timescale uint32) time.Duration {
	return time.Duration(float64(value) / float64(timescale) * float64(time.Second))
}
