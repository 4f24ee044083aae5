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

//go:build !linux

package lock

import (
	"testing"
)

func platformBackends() map[string]unfairBackend {
	return nil
}

func TestSpinBackendSelected(t *testing.T) {
	if _, ok := NewUnfair().impl.(*spinMutex); !ok {
		t.Fatalf("unfair mutex selected %T, want spin backend", NewUnfair().impl)
	}
}
