package booking

import "time"

// totalHours returns the fractional length of the care window in hours.
func totalHours(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

// totalAmount is the full-precision charge for the window. Rounding to
// cents happens only at display time, via models.RoundCurrency.
func totalAmount(hours, hourlyRate float64) float64 {
	return hours * hourlyRate
}
