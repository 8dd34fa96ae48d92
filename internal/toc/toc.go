package toc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	headerBlockSize = 272
	tocNameSize     = 12
	tocEntrySize    = tocNameSize + 4 + 4
	chunkHeaderSize = 24
)

// magicTrailer sits in the last 4 bytes of the fixed header block.
var magicTrailer = []byte{0xDE, 0xAD, 0xBE, 0xEF}

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrInvalidFormat    = errors.New("not a recognized table file")
	ErrChunkNotFound    = errors.New("table not found")
	ErrNoItems          = errors.New("table has no items")
	ErrUnsupportedChunk = errors.New("unsupported table type")
	ErrTruncated        = errors.New("unexpected end of file")
)

// TOCEntry is one directory record: a chunk name plus the absolute offset of
// the chunk header and the byte length of its record payload. The payload size
// excludes the 24-byte chunk header.
type TOCEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// File wraps an open table file for decoding. It never mutates the file;
// writes go through ApplyChangeset against the path instead.
type File struct {
	src    io.ReaderAt
	size   int64
	closer io.Closer
}

// Open opens the table file at path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{src: f, size: info.Size(), closer: f}, nil
}

// NewFile wraps an in-memory or already-open source. Used by tests and by
// callers that manage the handle themselves.
func NewFile(src io.ReaderAt, size int64) *File {
	return &File{src: src, size: size}
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// readExact reads exactly length bytes at offset, reporting ErrTruncated when
// the file ends early. The stated chunk sizes in the TOC are trusted to bound
// scans, so a short read here means the file lies about its own layout.
func (f *File) readExact(offset int64, length int) ([]byte, error) {
	if offset < 0 || offset+int64(length) > f.size {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, file is %d bytes", ErrTruncated, length, offset, f.size)
	}
	buf := make([]byte, length)
	if _, err := f.src.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("read at offset %d: %w", offset, err)
	}
	return buf, nil
}

// ValidateHeader checks the fixed header block: the file must be at least the
// header block long and carry the DE AD BE EF marker in its last 4 bytes.
func (f *File) ValidateHeader() error {
	if f.size == 0 {
		return ErrEmptyFile
	}
	if f.size < headerBlockSize {
		return fmt.Errorf("%w: %d bytes is shorter than the %d-byte header", ErrInvalidFormat, f.size, headerBlockSize)
	}
	marker, err := f.readExact(headerBlockSize-4, 4)
	if err != nil {
		return err
	}
	if !bytes.Equal(marker, magicTrailer) {
		return fmt.Errorf("%w: header marker is % X, want % X", ErrInvalidFormat, marker, magicTrailer)
	}
	return nil
}

// ReadTOC validates the header and decodes the chunk directory in file order.
func (f *File) ReadTOC() ([]TOCEntry, error) {
	if err := f.ValidateHeader(); err != nil {
		return nil, err
	}
	head, err := f.readExact(0, 4)
	if err != nil {
		return nil, err
	}
	tocOffset := int64(ReadU32(head))
	countBuf, err := f.readExact(tocOffset, 4)
	if err != nil {
		return nil, err
	}
	count := int(ReadU32(countBuf))
	entries := make([]TOCEntry, 0, count)
	cursor := tocOffset + 4
	for i := 0; i < count; i++ {
		raw, err := f.readExact(cursor, tocEntrySize)
		if err != nil {
			return nil, fmt.Errorf("directory entry %d: %w", i, err)
		}
		name, err := DecodeString(raw[:tocNameSize])
		if err != nil {
			return nil, fmt.Errorf("directory entry %d name: %w", i, err)
		}
		entries = append(entries, TOCEntry{
			Name:   name,
			Offset: ReadU32(raw[tocNameSize : tocNameSize+4]),
			Size:   ReadU32(raw[tocNameSize+4 : tocEntrySize]),
		})
		cursor += tocEntrySize
	}
	return entries, nil
}

// Lookup returns the first directory entry with the given exact name. An entry
// that exists but carries no payload is reported distinctly from a missing one.
func Lookup(entries []TOCEntry, name string) (TOCEntry, error) {
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		if e.Size == 0 {
			return TOCEntry{}, fmt.Errorf("%w: %s", ErrNoItems, name)
		}
		return e, nil
	}
	return TOCEntry{}, fmt.Errorf("%w: %s", ErrChunkNotFound, name)
}
