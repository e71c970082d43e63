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

package cryptoengine

// Zeroize overwrites b in place. This is a best-effort wipe — Go gives
// no hardware guarantee the memory won't have been copied by the
// garbage collector or compiler before this call runs — matching the
// same best-effort zeroisation the rest of the session stack performs
// on drop.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
