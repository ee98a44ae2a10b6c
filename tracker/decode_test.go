// SPDX-FileCopyrightText: 2026 Tamsin Wright
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func TestDecodeCSVBytes(t *testing.T) {
	t.Parallel()

	const content = "Biomarker Name,Date,Time,Value,Unit\nCréatinine,2024-01-15,,72,µmol/L\n"

	t.Run("plain utf-8", func(t *testing.T) {
		got, err := DecodeCSVBytes([]byte(content))
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got != content {
			t.Fatalf("expected passthrough, got %q", got)
		}
	})

	t.Run("utf-8 with BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(content)...)

		got, err := DecodeCSVBytes(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got != content {
			t.Fatalf("expected BOM stripped, got %q", got)
		}
	})

	t.Run("utf-16 little endian", func(t *testing.T) {
		encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := encoder.Bytes([]byte(content))
		if err != nil {
			t.Fatalf("failed to build fixture: %v", err)
		}

		got, err := DecodeCSVBytes(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got != content {
			t.Fatalf("expected UTF-16 decode, got %q", got)
		}
	})

	t.Run("utf-16 big endian", func(t *testing.T) {
		encoder := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewEncoder()
		data, err := encoder.Bytes([]byte(content))
		if err != nil {
			t.Fatalf("failed to build fixture: %v", err)
		}

		got, err := DecodeCSVBytes(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got != content {
			t.Fatalf("expected UTF-16 decode, got %q", got)
		}
	})

	t.Run("latin-1", func(t *testing.T) {
		// 0xE9 is é in Latin-1 and invalid on its own in UTF-8.
		data := []byte{'C', 'r', 0xE9, 'a', 't', 'i', 'n', 'i', 'n', 'e'}

		got, err := DecodeCSVBytes(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got != "Créatinine" {
			t.Fatalf("expected Latin-1 decode, got %q", got)
		}
	})
}
