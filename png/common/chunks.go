package common

// Signature is the 8-byte magic that starts every PNG stream.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Chunk types
const (
	// Critical chunks
	ChunkIHDR = "IHDR"
	ChunkPLTE = "PLTE"
	ChunkIDAT = "IDAT"
	ChunkIEND = "IEND"

	// Transparency and animation
	ChunkTRNS = "tRNS"
	ChunkACTL = "acTL"
	ChunkFCTL = "fcTL"
	ChunkFDAT = "fdAT"

	// Ancillary chunks decoded into metadata
	ChunkTEXT = "tEXt"
	ChunkZTXT = "zTXt"
	ChunkITXT = "iTXt"
	ChunkGAMA = "gAMA"
	ChunkSRGB = "sRGB"
	ChunkCHRM = "cHRM"
	ChunkPHYS = "pHYs"
	ChunkBKGD = "bKGD"
	ChunkHIST = "hIST"
	ChunkICCP = "iCCP"

	// Apple's variant marker: image data is raw DEFLATE without zlib framing
	ChunkCGBI = "CgBI"
)

// MaxChunkLength is the largest chunk payload length allowed by the format.
const MaxChunkLength = 1<<31 - 1

// IsCritical reports whether a chunk type is critical (upper-case first letter).
func IsCritical(typ string) bool {
	return len(typ) == 4 && typ[0]&0x20 == 0
}
