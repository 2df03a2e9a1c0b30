// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GlobalIDAlphabet is the 64 character alphabet IFC uses to pack a 128-bit
// UUID into 22 characters.
const GlobalIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// NewGlobalID returns a fresh, random IFC GlobalId.
func NewGlobalID() string {
	return CompressGUID(uuid.New())
}

// CompressGUID packs a UUID into the 22 character IFC form.
func CompressGUID(id uuid.UUID) string {
	var b strings.Builder
	b.Grow(22)
	writeChars(&b, uint32(id[0]), 2)
	for i := 1; i < 16; i += 3 {
		writeChars(&b, uint32(id[i])<<16|uint32(id[i+1])<<8|uint32(id[i+2]), 4)
	}
	return b.String()
}

// ExpandGUID reverses CompressGUID.
func ExpandGUID(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if !ValidGlobalID(s) {
		return id, fmt.Errorf("ifc: invalid GlobalId %q", s)
	}
	id[0] = byte(readChars(s[0:2]))
	for i, j := 1, 2; i < 16; i, j = i+3, j+4 {
		v := readChars(s[j : j+4])
		id[i] = byte(v >> 16)
		id[i+1] = byte(v >> 8)
		id[i+2] = byte(v)
	}
	return id, nil
}

// ValidGlobalID reports whether s is a well formed GlobalId.
func ValidGlobalID(s string) bool {
	if len(s) != 22 || s[0] > '3' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(GlobalIDAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

func writeChars(b *strings.Builder, v uint32, n int) {
	buf := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		buf[i] = GlobalIDAlphabet[v%64]
		v /= 64
	}
	b.Write(buf)
}

func readChars(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		v = v*64 + uint32(strings.IndexByte(GlobalIDAlphabet, s[i]))
	}
	return v
}
