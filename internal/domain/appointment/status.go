package appointment

// ===============================
// Appointment Status (relational)
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no-show"
)

var statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}

func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func IsValidStatus(s string) bool {
	for _, st := range statuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// InitialStatus is the status every new or rewritten appointment starts in.
func InitialStatus() Status {
	return StatusScheduled
}

// ===============================
// Detail Status (clinical document)
// ===============================

type DetailStatus string

const (
	DetailPending   DetailStatus = "pending"
	DetailCancelled DetailStatus = "cancelled"
	DetailCompleted DetailStatus = "completed"
	DetailNoShow    DetailStatus = "no-show"
)

// DetailStatusFor mirrors a relational status into the clinical document.
// Statuses without a clinical meaning map to pending.
func DetailStatusFor(s Status) DetailStatus {
	switch s {
	case StatusCancelled:
		return DetailCancelled
	case StatusCompleted:
		return DetailCompleted
	case StatusNoShow:
		return DetailNoShow
	default:
		return DetailPending
	}
}
