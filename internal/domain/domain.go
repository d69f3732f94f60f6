package domain

import (
	"github.com/accredify/accredify-backend/internal/domain/assignments"
	"github.com/accredify/accredify-backend/internal/domain/compliance"
)

type Project = compliance.Project
type Section = compliance.Section
type Standard = compliance.Standard
type Obligation = compliance.Obligation
type EvidenceRecord = compliance.EvidenceRecord
type EvidencePeriod = compliance.EvidencePeriod
type StatusChangeAudit = compliance.StatusChangeAudit

type Assignment = assignments.Assignment
type AssignmentItem = assignments.AssignmentItem

type Frequency = compliance.Frequency
type ScheduleKind = compliance.ScheduleKind
type ComplianceStatus = compliance.ComplianceStatus
type EvidenceKind = compliance.EvidenceKind
type ItemStatus = assignments.ItemStatus
type AssignmentStatus = assignments.AssignmentStatus

const (
	FreqDaily        = compliance.FreqDaily
	FreqWeekly       = compliance.FreqWeekly
	FreqBiWeekly     = compliance.FreqBiWeekly
	FreqMonthly      = compliance.FreqMonthly
	FreqQuarterly    = compliance.FreqQuarterly
	FreqSemiAnnually = compliance.FreqSemiAnnually
	FreqAnnual       = compliance.FreqAnnual

	ScheduleOneTime   = compliance.ScheduleOneTime
	ScheduleRecurring = compliance.ScheduleRecurring

	StatusCompliant    = compliance.StatusCompliant
	StatusInProcess    = compliance.StatusInProcess
	StatusNotCompliant = compliance.StatusNotCompliant

	EvidenceFile      = compliance.EvidenceFile
	EvidenceNote      = compliance.EvidenceNote
	EvidenceReference = compliance.EvidenceReference
	EvidenceForm      = compliance.EvidenceForm

	AuditEntityObligation     = compliance.AuditEntityObligation
	AuditEntityAssignmentItem = compliance.AuditEntityAssignmentItem

	ItemNotStarted = assignments.ItemNotStarted
	ItemInProgress = assignments.ItemInProgress
	ItemSubmitted  = assignments.ItemSubmitted
	ItemVerified   = assignments.ItemVerified
	ItemRejected   = assignments.ItemRejected

	AssignmentNotStarted    = assignments.AssignmentNotStarted
	AssignmentInProgress    = assignments.AssignmentInProgress
	AssignmentPendingReview = assignments.AssignmentPendingReview
	AssignmentVerified      = assignments.AssignmentVerified
)
