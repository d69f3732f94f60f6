package compliance

// Frequency is the closed set of recurrence labels the scheduler can do
// period math for. An Obligation whose raw frequency text could not be
// normalized keeps an empty Frequency and is excluded from period math.
type Frequency string

const (
	FreqDaily        Frequency = "Daily"
	FreqWeekly       Frequency = "Weekly"
	FreqBiWeekly     Frequency = "Bi-weekly"
	FreqMonthly      Frequency = "Monthly"
	FreqQuarterly    Frequency = "Quarterly"
	FreqSemiAnnually Frequency = "Semi-annually"
	FreqAnnual       Frequency = "Annual"
)

// Canonical reports whether f is one of the frequencies PeriodBounds and
// NextDueDate understand.
func (f Frequency) Canonical() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiWeekly, FreqMonthly, FreqQuarterly, FreqSemiAnnually, FreqAnnual:
		return true
	}
	return false
}

type ScheduleKind string

const (
	ScheduleOneTime   ScheduleKind = "one_time"
	ScheduleRecurring ScheduleKind = "recurring"
)

type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusInProcess    ComplianceStatus = "in_process"
	StatusNotCompliant ComplianceStatus = "not_compliant"
)

func (s ComplianceStatus) Valid() bool {
	switch s {
	case StatusCompliant, StatusInProcess, StatusNotCompliant:
		return true
	}
	return false
}

type EvidenceKind string

const (
	EvidenceFile      EvidenceKind = "file"
	EvidenceNote      EvidenceKind = "note"
	EvidenceReference EvidenceKind = "reference"
	EvidenceForm      EvidenceKind = "form"
)

func (k EvidenceKind) Valid() bool {
	switch k {
	case EvidenceFile, EvidenceNote, EvidenceReference, EvidenceForm:
		return true
	}
	return false
}

// Audit entity discriminators for StatusChangeAudit rows.
const (
	AuditEntityObligation     = "obligation"
	AuditEntityAssignmentItem = "assignment_item"
)
