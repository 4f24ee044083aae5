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
	"testing"
)

func TestParseGID(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int64
	}{
		{"goroutine 1 [running]:", 1},
		{"goroutine 4711 [running]:", 4711},
		{"goroutine 9223372036854775807 [running]:", 9223372036854775807},
		{"garbage", 0},
		{"", 0},
	} {
		if got := parseGID([]byte(tc.in)); got != tc.want {
			t.Errorf("parseGID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestGoroutineIDStable(t *testing.T) {
	if goroutineID() == 0 {
		t.Fatalf("goroutineID returned 0")
	}
	if a, b := goroutineID(), goroutineID(); a != b {
		t.Fatalf("goroutineID changed within a goroutine: %d then %d", a, b)
	}

	other := make(chan int64)
	go func() { other <- goroutineID() }()
	if id := <-other; id == goroutineID() {
		t.Fatalf("distinct goroutines share ID %d", id)
	}
}
