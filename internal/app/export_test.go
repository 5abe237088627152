package app

import "time"

// SetClock replaces the clock used for temporary room ids.
func SetClock(m *MerchantHotels, now func() time.Time) { m.now = now }
