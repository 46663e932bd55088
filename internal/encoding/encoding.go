// Package encoding normalizes the text encoding of recognizer transcripts and
// user-supplied input files before they enter the conversion pipeline. The
// pipeline only accepts UTF-8; everything else is detected and converted here.
package encoding

import (
	"bytes"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

// Encoding names returned by Detect.
const (
	UTF8    = "UTF-8"
	UTF8BOM = "UTF-8-BOM"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	Unknown = "UNKNOWN"
)

// Detect identifies the encoding of raw bytes by BOM markers and UTF-8
// validity.
func Detect(data []byte) string {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return UTF8BOM
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
		return UTF16LE
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
		return UTF16BE
	}
	if utf8.Valid(data) {
		return UTF8
	}
	return Unknown
}

// Decode converts raw bytes to a UTF-8 string, detecting the source encoding.
// Undecodable input is an invalid-input error, not silently mangled text.
func Decode(data []byte) (string, error) {
	enc := Detect(data)
	logger.Debug("input encoding detected", logger.String("encoding", enc))

	switch enc {
	case UTF8:
		return string(data), nil
	case UTF8BOM:
		return string(data[3:]), nil
	case UTF16LE:
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", types.NewAppError(types.ErrInvalidInput, "failed to decode UTF-16LE input", err)
		}
		return string(decoded), nil
	case UTF16BE:
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", types.NewAppError(types.ErrInvalidInput, "failed to decode UTF-16BE input", err)
		}
		return string(decoded), nil
	default:
		logger.Warn("input is not text in any supported encoding")
		return "", types.NewAppError(types.ErrInvalidInput, "input is not valid text in a supported encoding", nil)
	}
}

// ReadFile reads a file and returns its content as a UTF-8 string,
// converting from the detected encoding.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", types.NewAppError(types.ErrFileNotFound, "input file not found", err)
		}
		return "", types.NewAppError(types.ErrInvalidInput, "failed to read input file", err)
	}
	return Decode(data)
}
