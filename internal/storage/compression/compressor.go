// Package compression frames stored values so readers can tell raw and
// compressed encodings apart.
package compression

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownCompressor is returned by Get for an unregistered name
	ErrUnknownCompressor = errors.New("unknown compressor")

	// ErrCorrupt is returned when a framed value cannot be decoded
	ErrCorrupt = errors.New("corrupt compressed value")
)

// Frame tags. Every encoded value starts with one of these.
const (
	tagRaw byte = 0
	tagLZ4 byte = 1
)

// Compressor encodes and decodes framed values.
type Compressor interface {
	// Name returns the configured name of the algorithm
	Name() string

	// Encode returns a framed copy of data
	Encode(data []byte) ([]byte, error)

	// Decode reverses Encode. It accepts any frame tag, so values written
	// under a different setting stay readable.
	Decode(data []byte) ([]byte, error)
}

// Factory creates a compressor instance.
type Factory func() Compressor

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register registers a compressor factory under name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[name] = factory
}

// Get returns a new compressor for name.
func Get(name string) (Compressor, error) {
	mu.RLock()
	factory, ok := compressors[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompressor, name)
	}
	return factory(), nil
}

// Available lists the registered names in sorted order.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("none", func() Compressor { return NoCompressor{} })
	Register("lz4", func() Compressor { return LZ4Compressor{} })
}

// decode dispatches on the frame tag.
func decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrCorrupt)
	}
	switch data[0] {
	case tagRaw:
		return append([]byte(nil), data[1:]...), nil
	case tagLZ4:
		return decodeLZ4(data[1:])
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrCorrupt, data[0])
	}
}
