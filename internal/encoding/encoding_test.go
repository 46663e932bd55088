package encoding

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"homework-transcriber/internal/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain utf-8", []byte("Problem 1"), UTF8},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Problem 1")...), UTF8BOM},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'P', 0x00}, UTF16LE},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0x00, 'P'}, UTF16BE},
		{"binary garbage", []byte{0x80, 0x81, 0x82}, Unknown},
		{"empty input", nil, UTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("utf-8 passes through", func(t *testing.T) {
		got, err := Decode([]byte("a) $x = 1$"))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != "a) $x = 1$" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("bom stripped", func(t *testing.T) {
		got, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Problem 1")...))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != "Problem 1" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("utf-16le decoded", func(t *testing.T) {
		encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := encoder.Bytes([]byte("Problem 1"))
		if err != nil {
			t.Fatalf("encode fixture: %v", err)
		}

		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != "Problem 1" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("undecodable input rejected", func(t *testing.T) {
		_, err := Decode([]byte{0x80, 0x81, 0x82})
		if err == nil {
			t.Fatal("expected error for undecodable input")
		}
		var appErr *types.AppError
		if !errors.As(err, &appErr) || appErr.Code != types.ErrInvalidInput {
			t.Errorf("error = %v, want AppError with ErrInvalidInput", err)
		}
	})
}

func TestReadFile(t *testing.T) {
	t.Run("reads utf-8 file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.txt")
		if err := os.WriteFile(path, []byte("# Problem 1\n"), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if got != "# Problem 1\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		var appErr *types.AppError
		if !errors.As(err, &appErr) || appErr.Code != types.ErrFileNotFound {
			t.Errorf("error = %v, want AppError with ErrFileNotFound", err)
		}
	})
}
