// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import "time"

// FullDuration is how long a fully fed animal stays full before its feed
// level drops back to zero.
const FullDuration = 60 * time.Second

// NoTimer is the remaining-seconds sentinel when no countdown is running.
// The UI renders it as "--".
const NoTimer = -1

// These functions are pure in (now, cattle state). Expiry is evaluated
// lazily: no background timer mutates persisted state, callers apply
// applyExpiry on every observation (the UI polls at 1 Hz).

// armTimer starts the countdown for an animal that just reached MaxHunger.
func armTimer(c *Cattle, now time.Time) {
	c.TimerEndTime = now.Add(FullDuration).UnixMilli()
}

// applyExpiry resets an expired animal: feed level to zero, timer cleared.
// Returns true if a transition happened.
func applyExpiry(c *Cattle, now time.Time) bool {
	if c.TimerEndTime == 0 || now.UnixMilli() < c.TimerEndTime {
		return false
	}
	c.Hunger = 0
	c.TimerEndTime = 0
	return true
}

// remainingSeconds reports the whole seconds left on the countdown,
// rounded up, or NoTimer when idle. The value is monotonically
// non-increasing under repeated observation with a fixed TimerEndTime.
func remainingSeconds(c *Cattle, now time.Time) int {
	if c.TimerEndTime == 0 {
		return NoTimer
	}
	ms := c.TimerEndTime - now.UnixMilli()
	if ms <= 0 {
		return NoTimer
	}
	return int((ms + 999) / 1000)
}
