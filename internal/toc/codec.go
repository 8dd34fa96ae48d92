package toc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bounds for the two integer value kinds stored in table records.
const (
	MaxUint32 = int64(4294967295)
	MinInt32  = int64(-2147483648)
	MaxInt32  = int64(2147483647)
)

var (
	ErrNotANumber       = errors.New("value contains invalid characters")
	ErrTooHigh          = errors.New("value is too high")
	ErrTooLow           = errors.New("value is too low")
	ErrNonASCII         = errors.New("string contains non-ASCII characters")
	ErrStringTooLong    = errors.New("string is too long")
	ErrStringConversion = errors.New("invalid string conversion")
)

func ReadU32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

func ReadI32(buf []byte) int32 {
	return int32(binary.LittleEndian.Uint32(buf))
}

func PutU32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func PutI32(v int32) []byte {
	return PutU32(uint32(v))
}

// ParseBoundedInt parses text as a decimal integer and enforces the inclusive
// range [min, max]. The returned error names the violated bound.
func ParseBoundedInt(text string, min, max int64) (int64, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(strings.TrimSpace(text), "-") {
				return 0, fmt.Errorf("%w: %s is below the minimum %d", ErrTooLow, text, min)
			}
			return 0, fmt.Errorf("%w: %s exceeds the maximum %d", ErrTooHigh, text, max)
		}
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, text)
	}
	if v > max {
		return 0, fmt.Errorf("%w: %s exceeds the maximum %d", ErrTooHigh, text, max)
	}
	if v < min {
		return 0, fmt.Errorf("%w: %s is below the minimum %d", ErrTooLow, text, min)
	}
	return v, nil
}

// ParseU32 parses an unsigned 32-bit record value.
func ParseU32(text string) (uint32, error) {
	v, err := ParseBoundedInt(text, 0, MaxUint32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// ParseI32 parses a signed 32-bit record value.
func ParseI32(text string) (int32, error) {
	v, err := ParseBoundedInt(text, MinInt32, MaxInt32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// DecodeString interprets buf as a null-terminated byte string and returns the
// bytes before the first terminator. A field with no terminator is malformed.
// TOC names, chunk kind names and fixed string fields all use this layout.
func DecodeString(buf []byte) (string, error) {
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 {
		return "", fmt.Errorf("%w: no null terminator in %d-byte field", ErrStringConversion, len(buf))
	}
	return string(buf[:idx]), nil
}

// PackString encodes text into a width-byte zero-padded field. The final byte
// is always forced to zero so the field stays null-terminated even when the
// text fills width-1 bytes exactly.
func PackString(text string, width int) ([]byte, error) {
	for _, r := range text {
		if r > 127 {
			return nil, fmt.Errorf("%w: %q", ErrNonASCII, text)
		}
	}
	if len(text) >= width {
		return nil, fmt.Errorf("%w: %q needs %d bytes but the field holds %d plus a terminator", ErrStringTooLong, text, len(text), width-1)
	}
	buf := make([]byte, width)
	copy(buf, text)
	buf[width-1] = 0
	return buf, nil
}
