// Copyright 2025 The go-lock Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lock

import (
	"runtime"
)

// goroutineID returns the current goroutine's ID by parsing the first line
// of its stack trace, which has the form "goroutine 123 [running]:". This
// costs a few microseconds, so only Recursive and ErrorChecking mutexes pay
// for it; Normal mutexes never call it.
func goroutineID() int64 {
	// 64 bytes is enough for the header line; runtime.Stack truncates the
	// rest.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) {
		return 0
	}
	var id int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
