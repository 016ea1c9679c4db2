package service

// adjustedQuota recomputes a subject's available seats after its capacity
// changes. Occupied seats (oldMax - available) are preserved; when the new
// capacity is below the occupied count the result clamps to zero rather than
// going negative, leaving the subject oversubscribed but consistent.
func adjustedQuota(oldMax, available, newMax int) int {
	occupied := oldMax - available
	if occupied < 0 {
		occupied = 0
	}
	next := newMax - occupied
	if next < 0 {
		return 0
	}
	return next
}
