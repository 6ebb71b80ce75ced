package sim

// GridSearch returns the largest i in [0, len(a)-2] with a[i] <= quarry <
// a[i+1]. A quarry below a[0] gives 0 and one at or above a[len(a)-1]
// gives len(a)-2. a must be sorted ascending with at least two elements.
func GridSearch[T Float](a []T, quarry T) int {
	lower, upper := 0, len(a)-1
	for upper-lower > 1 {
		mid := lower + (upper-lower)/2
		if a[mid] > quarry {
			upper = mid
		} else {
			lower = mid
		}
	}
	return lower
}

// GridSearchNuclide is GridSearch restricted to a[low:high+1]. The result
// is an absolute index in [low, high-1].
func GridSearchNuclide[T Float](a []NuclideGridPoint[T], quarry T, low, high int) int {
	lower, upper := low, high
	for upper-lower > 1 {
		mid := lower + (upper-lower)/2
		if a[mid].Energy > quarry {
			upper = mid
		} else {
			lower = mid
		}
	}
	return lower
}
