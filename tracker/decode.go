/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// DecodeCSVBytes converts an uploaded CSV file to a string. BOM-marked
// UTF-16 and valid UTF-8 are handled directly; anything else is read as
// Latin-1, which accepts every byte value.
func DecodeCSVBytes(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf16LEBOM) || bytes.HasPrefix(data, utf16BEBOM) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err == nil {
			logger.Debug("Decoded CSV upload", "encoding", "utf-16")

			return string(decoded), nil
		}
	}

	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", validationErr("Could not decode the CSV file with any supported encoding. " +
			"Please ensure your file is saved with UTF-8 encoding or try resaving it in a different format.")
	}

	logger.Debug("Decoded CSV upload", "encoding", "latin-1")

	return string(decoded), nil
}
