// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package transfer

import (
	"strings"
	"unicode/utf8"
)

// forbiddenFilenameChars are replaced with '_' so a peer-announced
// filename can never escape the destination directory or confuse the
// host filesystem.
const forbiddenFilenameChars = "/\\:*?\"<>|"

// maxFilenameLength caps the sanitised name at 255 bytes, the common
// filesystem limit.
const maxFilenameLength = 255

// SanitizeFilename replaces path separators and other filesystem-hostile
// characters in a peer-announced filename with '_' and caps its length at
// maxFilenameLength bytes without splitting a multi-byte rune.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(forbiddenFilenameChars, r) {
			r = '_'
		}
		if b.Len()+utf8.RuneLen(r) > maxFilenameLength {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
