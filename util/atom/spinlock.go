// Copyright 2014 OneOfOne
// https://github.com/OneOfOne/go-utils
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

// 	http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package atom

import (
	"runtime"

	uatomic "go.uber.org/atomic"
)

// SpinLock is a CAS spin lock, the zero value is unlocked. It guards short
// critical sections such as free-list splices.
type SpinLock struct {
	f uatomic.Uint32
}

// Lock spins until the lock is acquired, yielding the processor between attempts.
func (sl *SpinLock) Lock() {
	for !sl.TryLock() {
		runtime.Gosched()
	}
}

// Unlock unlocks sl. Unlocking an unlocked SpinLock is harmless.
func (sl *SpinLock) Unlock() {
	sl.f.Store(0)
}

// TryLock reports whether the lock was acquired without spinning.
func (sl *SpinLock) TryLock() bool {
	return sl.f.CompareAndSwap(0, 1)
}

func (sl *SpinLock) String() string {
	if sl.f.Load() == 1 {
		return "Locked"
	}
	return "Unlocked"
}
