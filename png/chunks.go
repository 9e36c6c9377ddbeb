package png

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// Chunk is one {length, type, payload, crc} record of the container.
// Data aliases the input buffer.
type Chunk struct {
	Type string
	Data []byte
	CRC  uint32
}

// chunkReader walks the chunk stream of a PNG buffer.
type chunkReader struct {
	data []byte
	off  int
	done bool
}

func newChunkReader(data []byte) (*chunkReader, error) {
	if len(data) < len(common.Signature) || !bytes.Equal(data[:8], common.Signature[:]) {
		return nil, fmt.Errorf("bad signature: %w", codec.ErrMalformedContainer)
	}
	return &chunkReader{data: data, off: len(common.Signature)}, nil
}

// next returns the following chunk. After IEND has been returned, ok is false.
func (r *chunkReader) next() (chunk Chunk, ok bool, err error) {
	if r.done {
		return Chunk{}, false, nil
	}
	if len(r.data)-r.off < 12 {
		return Chunk{}, false, fmt.Errorf("truncated chunk header at offset %d (missing IEND?): %w", r.off, codec.ErrMalformedContainer)
	}

	length := binary.BigEndian.Uint32(r.data[r.off:])
	if length > common.MaxChunkLength {
		return Chunk{}, false, fmt.Errorf("chunk length %d: %w", length, codec.ErrMalformedContainer)
	}
	typ := r.data[r.off+4 : r.off+8]
	for _, c := range typ {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return Chunk{}, false, fmt.Errorf("invalid chunk type %q: %w", typ, codec.ErrMalformedContainer)
		}
	}

	end := r.off + 8 + int(length)
	if end+4 > len(r.data) {
		return Chunk{}, false, fmt.Errorf("chunk %s overruns input: %w", typ, codec.ErrMalformedContainer)
	}
	chunk = Chunk{
		Type: string(typ),
		Data: r.data[r.off+8 : end],
		CRC:  binary.BigEndian.Uint32(r.data[end:]),
	}
	if got := common.CRC32(typ, chunk.Data); got != chunk.CRC {
		return Chunk{}, false, fmt.Errorf("chunk %s crc %#08x, want %#08x: %w", chunk.Type, got, chunk.CRC, codec.ErrMalformedContainer)
	}

	r.off = end + 4
	if chunk.Type == common.ChunkIEND {
		r.done = true
	}
	return chunk, true, nil
}

// ReadChunks returns every chunk of a PNG stream up to and including IEND,
// verifying the signature and each chunk's CRC.
func ReadChunks(data []byte) ([]Chunk, error) {
	r, err := newChunkReader(data)
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	for {
		c, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return chunks, nil
		}
		chunks = append(chunks, c)
	}
}
