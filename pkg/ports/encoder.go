package ports

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Codec   string // Encoder name (e.g. "libx264"); empty selects one from the container
	Bitrate int    // Target bitrate in kbps (0 = encoder default)
	Quality int    // CRF value (0 = encoder default)
}
