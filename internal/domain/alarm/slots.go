package alarm

import "github.com/oshokin/alarm-clock/internal/domain/clock"

// SlotCount is the number of independently configured alarms.
const SlotCount = 3

// Slots holds the configured alarm times. The zero value sets every slot to 00:00:00.
type Slots [SlotCount]clock.TimeOfDay

// Match returns the index of the first slot equal to now.
func (s *Slots) Match(now clock.TimeOfDay) (int, bool) {
	for i, at := range s {
		if at.Equal(now) {
			return i, true
		}
	}

	return -1, false
}

// Evaluate reports whether now equals any alarm slot.
func Evaluate(now clock.TimeOfDay, alarms Slots) bool {
	_, ok := alarms.Match(now)

	return ok
}
