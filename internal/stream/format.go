package stream

// The bridge decodes everything to one fixed PCM profile; format
// negotiation is out of scope.
const (
	DefaultBitDepth   = 16
	DefaultSampleRate = 48000
	DefaultChannels   = 2
	DefaultLayout     = "stereo"

	// FramesPerChunk is the number of sample frames forwarded per chunk.
	// At 16-bit stereo this yields the host's 1152-byte PCM payload.
	FramesPerChunk = 288
)

// Format describes the PCM layout a decode process emits.
type Format struct {
	BitDepth   int
	SampleRate int
	Channels   int
	Layout     string
}

// DefaultFormat returns the fixed profile every session uses:
// 16-bit, 48kHz, interleaved stereo.
func DefaultFormat() Format {
	return Format{
		BitDepth:   DefaultBitDepth,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		Layout:     DefaultLayout,
	}
}

// BytesPerFrame returns the size of one interleaved sample frame.
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// ChunkSize returns the fixed chunk size in bytes. It is a pure function
// of the format: bytes per frame times frames per chunk.
func (f Format) ChunkSize() int {
	return f.BytesPerFrame() * FramesPerChunk
}
