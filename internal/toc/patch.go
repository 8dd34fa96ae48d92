package toc

import (
	"fmt"
	"os"
	"sort"
)

// Edit is one in-place modification: replacement bytes at an absolute file
// offset. Edits never change the file length.
type Edit struct {
	Offset int64
	Data   []byte
}

// BuildChangeset computes the replacement bytes that set every supplied record
// to rawValue. Records carrying a time counter accept the colon form and are
// canonicalized to milliseconds before encoding. Validation covers every
// record before any edit is returned, so a single bad encoding yields no
// changeset at all and the file is never partially written.
func BuildChangeset(kind string, records []Record, rawValue string) ([]Edit, error) {
	edits := make([]Edit, 0, len(records))
	for _, rec := range records {
		value := rawValue
		if TimeAnnotated(kind, rec.Key) {
			canonical, err := ParseEditTime(value)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", DisplayKey(rec.Key), err)
			}
			value = canonical
		}
		var data []byte
		switch rec.Kind {
		case UnsignedInt32:
			v, err := ParseU32(value)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", DisplayKey(rec.Key), err)
			}
			data = PutU32(v)
		case SignedInt32:
			v, err := ParseI32(value)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", DisplayKey(rec.Key), err)
			}
			data = PutI32(v)
		case FixedString:
			packed, err := PackString(value, rec.Width)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", DisplayKey(rec.Key), err)
			}
			data = packed
		default:
			return nil, fmt.Errorf("key %s: unknown value kind %d", DisplayKey(rec.Key), rec.Kind)
		}
		edits = append(edits, Edit{Offset: rec.Offset, Data: data})
	}
	return edits, nil
}

// ApplyChangeset writes the edits to path in one read-write session. Every
// offset is bounds-checked against the current file size before the first
// write; the handle is synced and closed on all exit paths.
func ApplyChangeset(path string, edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	ordered := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if len(e.Data) == 0 {
			continue
		}
		buf := make([]byte, len(e.Data))
		copy(buf, e.Data)
		ordered = append(ordered, Edit{Offset: e.Offset, Data: buf})
	}
	if len(ordered) == 0 {
		return nil
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Offset < ordered[j].Offset
	})

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	for _, edit := range ordered {
		if edit.Offset < 0 {
			return fmt.Errorf("negative edit offset %d", edit.Offset)
		}
		if end := edit.Offset + int64(len(edit.Data)); end > size {
			return fmt.Errorf("edit at %d with length %d exceeds file size %d", edit.Offset, len(edit.Data), size)
		}
	}
	for _, edit := range ordered {
		if _, err := f.WriteAt(edit.Data, edit.Offset); err != nil {
			return fmt.Errorf("write %s at offset %d: %w", path, edit.Offset, err)
		}
	}
	return f.Sync()
}
