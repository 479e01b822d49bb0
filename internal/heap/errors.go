package heap

import "spos/internal/diag"

// These wrappers exist purely to keep the error-kind vocabulary (ownership,
// range, capacity) visible at each call site instead of a bare diag.Report
// string.

func reportOwnershipFailure(msg string) {
	diag.Report("ownership: " + msg)
}

func reportRangeFailure(msg string) {
	diag.Report("range: " + msg)
}

func reportCapacityFailure(msg string) {
	diag.Report("capacity: " + msg)
}
