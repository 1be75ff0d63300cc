package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// NoCompressor stores values unchanged behind a raw tag.
type NoCompressor struct{}

func (NoCompressor) Name() string { return "none" }

func (NoCompressor) Encode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)+1)
	out = append(out, tagRaw)
	return append(out, data...), nil
}

func (NoCompressor) Decode(data []byte) ([]byte, error) {
	return decode(data)
}

// LZ4Compressor compresses values with lz4 blocks. The frame stores the
// uncompressed length as a uvarint so Decode can size its buffer exactly.
// Values that do not shrink are stored raw.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{tagRaw}, nil
	}

	header := make([]byte, 1+binary.MaxVarintLen64)
	header[0] = tagLZ4
	hl := 1 + binary.PutUvarint(header[1:], uint64(len(data)))

	buf := make([]byte, hl+lz4.CompressBlockBound(len(data)))
	copy(buf, header[:hl])
	n, err := lz4.CompressBlock(data, buf[hl:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	// n == 0 means incompressible
	if n == 0 || hl+n >= len(data)+1 {
		return NoCompressor{}.Encode(data)
	}
	return buf[:hl+n], nil
}

func (LZ4Compressor) Decode(data []byte) ([]byte, error) {
	return decode(data)
}

func decodeLZ4(body []byte) ([]byte, error) {
	size, hl := binary.Uvarint(body)
	if hl <= 0 {
		return nil, fmt.Errorf("%w: bad length header", ErrCorrupt)
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body[hl:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrCorrupt, size, n)
	}
	return out, nil
}
