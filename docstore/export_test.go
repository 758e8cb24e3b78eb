package docstore

import "time"

// SetClock overrides the store's time source for tests.
func SetClock(s *DocumentStore, now func() time.Time) {
	s.now = now
}
