package appointment

import "strings"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

var allStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
	StatusCompleted,
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range allStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// InitialStatus is the status of every freshly booked appointment.
func InitialStatus() Status {
	return StatusPending
}

// IsConsuming reports whether an appointment in this status occupies a slot.
// A completed appointment keeps its slot: the service took place in it.
func IsConsuming(s Status) bool {
	return s == StatusPending || s == StatusApproved || s == StatusCompleted
}

func isTerminal(s Status) bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

// SlotDelta is the ledger adjustment implied by moving from old to new:
// -1 reserves a slot, +1 releases one. Defined for every pair.
func SlotDelta(old, new Status) int {
	switch {
	case !IsConsuming(old) && IsConsuming(new):
		return -1
	case IsConsuming(old) && !IsConsuming(new):
		return 1
	default:
		return 0
	}
}

// ===============================
// Cancellation
// ===============================

type CancellationCategory string

const (
	CancellationNoFee   CancellationCategory = "no_fee"
	CancellationWithFee CancellationCategory = "with_fee"
)

const (
	noteCancelledWhilePending = "Cancelled before approval."
	noteCancelledWithFee      = "Cancelled after approval; cancellation fee applies."
	noteCancelledGeneric      = "Cancelled."
)

func ParseCancellationCategory(s string) (CancellationCategory, bool) {
	switch CancellationCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CancellationNoFee:
		return CancellationNoFee, true
	case CancellationWithFee:
		return CancellationWithFee, true
	}
	return "", false
}

// ClassifyCancellation decides the refund category of a cancellation.
// An explicit override wins; otherwise it is derived from the old status.
func ClassifyCancellation(old Status, override *CancellationCategory, note string) (CancellationCategory, string) {
	var (
		category    CancellationCategory
		defaultNote string
	)

	switch {
	case override != nil:
		category = *override
	case old == StatusPending:
		category, defaultNote = CancellationNoFee, noteCancelledWhilePending
	case old == StatusApproved || old == StatusCompleted:
		category, defaultNote = CancellationWithFee, noteCancelledWithFee
	default:
		category, defaultNote = CancellationNoFee, noteCancelledGeneric
	}

	if strings.TrimSpace(note) != "" {
		return category, note
	}
	return category, defaultNote
}

// ===============================
// Transitions
// ===============================

type TransitionResult struct {
	From  Status
	To    Status
	Delta int

	// Set only when To is Cancelled.
	Category *CancellationCategory
	Note     string

	// Unusual marks transitions staff may perform but that deserve a log
	// line, such as reopening a completed appointment.
	Unusual bool
}

// Transition computes the effects of a status change. Any status may move to
// any other status.
func Transition(old, new Status, override *CancellationCategory, note string) TransitionResult {
	res := TransitionResult{
		From:    old,
		To:      new,
		Delta:   SlotDelta(old, new),
		Unusual: old != new && isTerminal(old),
	}

	if new == StatusCancelled && old != StatusCancelled {
		category, n := ClassifyCancellation(old, override, note)
		res.Category = &category
		res.Note = n
	}

	return res
}
