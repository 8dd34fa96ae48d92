package toc

import (
	"fmt"
	"strconv"
)

// Chunk kind names as they appear on disk in the chunk header.
const (
	KindInfo          = "BRHEAD"
	KindQuestData     = "QUEST_DB"
	KindQuestCampaign = "QUEST_CMP"
)

// KindNames returns the chunk kinds this decoder understands. The set is
// published so that name-resolution front ends can validate and suggest
// without duplicating format knowledge.
func KindNames() []string {
	return []string{KindInfo, KindQuestData, KindQuestCampaign}
}

// ValueKind discriminates the closed set of record value encodings.
type ValueKind int

const (
	UnsignedInt32 ValueKind = iota
	SignedInt32
	FixedString
)

// Fixed field widths inside the info chunk payload.
const (
	infoStringWidth  = 16
	infoIgnoredBytes = 88
	infoPayloadSize  = 2*infoStringWidth + infoIgnoredBytes + 4
)

// Record is one decoded key-value entry. Key is the raw decoded string and may
// be empty; presentation maps the empty key to a sentinel label, identity does
// not. Offset addresses the first byte of the value on disk and Width is the
// exact number of bytes a write may touch.
type Record struct {
	Key    string
	Offset int64
	Kind   ValueKind
	Width  int

	Uint uint32
	Int  int32
	Str  string
}

// ValueString renders the decoded value for display and reports.
func (r Record) ValueString() string {
	switch r.Kind {
	case UnsignedInt32:
		return strconv.FormatUint(uint64(r.Uint), 10)
	case SignedInt32:
		return strconv.FormatInt(int64(r.Int), 10)
	default:
		return r.Str
	}
}

// Millis returns the record value as a millisecond count for time-annotated
// fields.
func (r Record) Millis() int64 {
	if r.Kind == UnsignedInt32 {
		return int64(r.Uint)
	}
	return int64(r.Int)
}

// Chunk is one decoded table: its on-disk kind name and its records in decode
// order. Records are rebuilt from the file on every operation and never cached.
type Chunk struct {
	Kind    string
	Records []Record
}

// RawValue returns the current on-disk bytes of a record's value field.
func (f *File) RawValue(rec Record) ([]byte, error) {
	return f.readExact(rec.Offset, rec.Width)
}

// DecodeChunk reads the chunk header at the entry's offset and dispatches to
// the record layout for the decoded kind name.
func (f *File) DecodeChunk(entry TOCEntry) (*Chunk, error) {
	header, err := f.readExact(int64(entry.Offset), chunkHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("chunk %s header: %w", entry.Name, err)
	}
	kind, err := DecodeString(header[:tocNameSize])
	if err != nil {
		return nil, fmt.Errorf("chunk %s kind name: %w", entry.Name, err)
	}
	switch kind {
	case KindQuestData, KindQuestCampaign:
		return f.decodeQuestChunk(kind, entry)
	case KindInfo:
		return f.decodeInfoChunk(entry)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChunk, kind)
	}
}

// decodeQuestChunk walks length-prefixed key records until the cursor reaches
// the end of the stated payload. Each record is a LE u32 key length (counting
// the terminator), the key bytes, then a 4-byte LE signed value.
func (f *File) decodeQuestChunk(kind string, entry TOCEntry) (*Chunk, error) {
	chunk := &Chunk{Kind: kind}
	cursor := int64(entry.Offset) + chunkHeaderSize
	end := cursor + int64(entry.Size)
	for cursor < end {
		lenBuf, err := f.readExact(cursor, 4)
		if err != nil {
			return nil, fmt.Errorf("chunk %s record %d: %w", entry.Name, len(chunk.Records), err)
		}
		keyLen := int(ReadU32(lenBuf))
		cursor += 4
		keyBuf, err := f.readExact(cursor, keyLen)
		if err != nil {
			return nil, fmt.Errorf("chunk %s record %d key: %w", entry.Name, len(chunk.Records), err)
		}
		key, err := DecodeString(keyBuf)
		if err != nil {
			return nil, fmt.Errorf("chunk %s record %d key: %w", entry.Name, len(chunk.Records), err)
		}
		cursor += int64(keyLen)
		valBuf, err := f.readExact(cursor, 4)
		if err != nil {
			return nil, fmt.Errorf("chunk %s record %q value: %w", entry.Name, key, err)
		}
		chunk.Records = append(chunk.Records, Record{
			Key:    key,
			Offset: cursor,
			Kind:   SignedInt32,
			Width:  4,
			Int:    ReadI32(valBuf),
		})
		cursor += 4
	}
	return chunk, nil
}

// decodeInfoChunk reads the fixed BRHEAD field sequence. On-disk order is
// last-saved-by then created-by; presentation order differs and is decided by
// SortRecords, not here.
func (f *File) decodeInfoChunk(entry TOCEntry) (*Chunk, error) {
	base := int64(entry.Offset) + chunkHeaderSize
	payload, err := f.readExact(base, infoPayloadSize)
	if err != nil {
		return nil, fmt.Errorf("chunk %s payload: %w", entry.Name, err)
	}
	lastSaved, err := DecodeString(payload[:infoStringWidth])
	if err != nil {
		return nil, fmt.Errorf("chunk %s last_saved_by: %w", entry.Name, err)
	}
	createdBy, err := DecodeString(payload[infoStringWidth : 2*infoStringWidth])
	if err != nil {
		return nil, fmt.Errorf("chunk %s created_by: %w", entry.Name, err)
	}
	timeOffset := 2*infoStringWidth + infoIgnoredBytes
	return &Chunk{
		Kind: KindInfo,
		Records: []Record{
			{Key: "last_saved_by", Offset: base, Kind: FixedString, Width: infoStringWidth, Str: lastSaved},
			{Key: "created_by", Offset: base + infoStringWidth, Kind: FixedString, Width: infoStringWidth, Str: createdBy},
			{Key: "total_time", Offset: base + int64(timeOffset), Kind: UnsignedInt32, Width: 4, Uint: ReadU32(payload[timeOffset:])},
		},
	}, nil
}
