package common

// crcPolynomial is the reversed IEEE 802.3 polynomial used by PNG.
const crcPolynomial = 0xedb88320

// crcTable holds the CRC of every 4-bit value, so the checksum is updated a
// nibble at a time.
var crcTable [16]uint32

func init() {
	for n := range crcTable {
		c := uint32(n)
		for k := 0; k < 4; k++ {
			if c&1 != 0 {
				c = crcPolynomial ^ c>>1
			} else {
				c >>= 1
			}
		}
		crcTable[n] = c
	}
}

// UpdateCRC32 continues a running CRC-32 with p. Start from 0.
func UpdateCRC32(crc uint32, p []byte) uint32 {
	crc = ^crc
	for _, b := range p {
		crc = crcTable[(crc^uint32(b))&0x0f] ^ crc>>4
		crc = crcTable[(crc^uint32(b>>4))&0x0f] ^ crc>>4
	}
	return ^crc
}

// CRC32 returns the CRC-32 of the concatenation of parts.
func CRC32(parts ...[]byte) uint32 {
	var crc uint32
	for _, p := range parts {
		crc = UpdateCRC32(crc, p)
	}
	return crc
}
