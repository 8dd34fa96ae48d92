package toc

import (
	"encoding/binary"
)

// fixtureChunk describes one chunk to place in a synthesized table file. The
// same name is used for the directory entry and the chunk header.
type fixtureChunk struct {
	name    string
	payload []byte
}

// questRecord encodes one quest-style record: key length (terminator
// included), null-terminated key, signed value.
func questRecord(key string, value int32) []byte {
	buf := make([]byte, 0, 4+len(key)+1+4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(key)+1))
	buf = append(buf, key...)
	buf = append(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(value))
	return buf
}

// questRecordRaw encodes a record with explicit key bytes and declared length,
// for malformed-input cases.
func questRecordRaw(declaredLen uint32, keyBytes []byte, value int32) []byte {
	buf := make([]byte, 0, 4+len(keyBytes)+4)
	buf = binary.LittleEndian.AppendUint32(buf, declaredLen)
	buf = append(buf, keyBytes...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(value))
	return buf
}

// infoPayload builds a BRHEAD payload: the two 16-byte name fields in on-disk
// order (saver first), 88 filler bytes, then the millisecond counter.
func infoPayload(lastSavedBy, createdBy string, totalTime uint32) []byte {
	buf := make([]byte, infoPayloadSize)
	copy(buf, lastSavedBy)
	copy(buf[infoStringWidth:], createdBy)
	binary.LittleEndian.PutUint32(buf[2*infoStringWidth+infoIgnoredBytes:], totalTime)
	return buf
}

// buildTestFile lays out a complete table file: the 272-byte header block with
// the magic trailer, each chunk (24-byte header plus payload) in order, and
// the directory at the end with the directory offset stored at offset 0.
func buildTestFile(chunks []fixtureChunk) []byte {
	buf := make([]byte, headerBlockSize)
	copy(buf[headerBlockSize-4:], magicTrailer)

	offsets := make([]int, len(chunks))
	for i, c := range chunks {
		offsets[i] = len(buf)
		header := make([]byte, chunkHeaderSize)
		copy(header, c.name)
		buf = append(buf, header...)
		buf = append(buf, c.payload...)
	}

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(chunks)))
	for i, c := range chunks {
		entry := make([]byte, tocEntrySize)
		copy(entry, c.name)
		binary.LittleEndian.PutUint32(entry[tocNameSize:], uint32(offsets[i]))
		binary.LittleEndian.PutUint32(entry[tocNameSize+4:], uint32(len(c.payload)))
		buf = append(buf, entry...)
	}
	return buf
}
