package services

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/clients/gemini"
	"github.com/accredify/accredify-backend/internal/data/repos"
	types "github.com/accredify/accredify-backend/internal/domain"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// requiredHeaders is the full checklist-export header set. Matching is
// case-insensitive on the header row; the batch fails before any row is
// processed when one is absent.
var requiredHeaders = []string{
	"section",
	"standard",
	"indicator",
	"evidence required",
	"responsible person",
	"frequency",
	"assigned to",
	"compliance evidence",
	"score",
}

const defaultScore = 10

// classifierThreshold: rule-based resolutions at or above this confidence
// are trusted as-is; below it the advisory classifier gets a second opinion.
const classifierThreshold = 0.8

// RowError reports one skipped CSV row. Line numbers are 1-based file lines,
// so the first data row is line 2.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportReport is the per-batch outcome: aggregate counts plus the per-row
// error list. A report with RowErrors is still a committed import.
type ImportReport struct {
	Created            int         `json:"created"`
	Updated            int         `json:"updated"`
	Skipped            int         `json:"skipped"`
	SectionsCreated    int         `json:"sections_created"`
	StandardsCreated   int         `json:"standards_created"`
	RowErrors          []RowError  `json:"row_errors,omitempty"`
	UnmatchedAssignees []string    `json:"unmatched_assignees,omitempty"`
	ObligationIDs      []uuid.UUID `json:"-"`
}

// UserDirectory resolves assignee emails against the identity collaborator.
// Optional; a nil directory disables unmatched-assignee reporting.
type UserDirectory interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

type ImportService interface {
	// ImportCSV reconciles a checklist export against the project's stored
	// obligations. All rows commit or roll back together; re-running an
	// unchanged file updates in place and creates nothing.
	ImportCSV(ctx context.Context, projectID uuid.UUID, r io.Reader) (*ImportReport, error)
}

type importService struct {
	log         *logger.Logger
	db          *gorm.DB
	projects    repos.ProjectRepo
	sections    repos.SectionRepo
	standards   repos.StandardRepo
	obligations repos.ObligationRepo
	freq        FrequencyService
	compliance  ComplianceService
	classifier  gemini.Client
	users       UserDirectory
	now         func() time.Time
	// recalcWorkers bounds the post-commit recalculation fan-out.
	recalcWorkers int
}

func NewImportService(
	log *logger.Logger,
	db *gorm.DB,
	projects repos.ProjectRepo,
	sections repos.SectionRepo,
	standards repos.StandardRepo,
	obligations repos.ObligationRepo,
	freq FrequencyService,
	compliance ComplianceService,
	classifier gemini.Client,
	users UserDirectory,
) ImportService {
	return &importService{
		log:           log.With("service", "ImportService"),
		db:            db,
		projects:      projects,
		sections:      sections,
		standards:     standards,
		obligations:   obligations,
		freq:          freq,
		compliance:    compliance,
		classifier:    classifier,
		users:         users,
		now:           time.Now,
		recalcWorkers: 4,
	}
}

// IdentityKey derives the stable upsert key for one imported requirement
// from its natural-language coordinates. Coordinates are lowercased and
// trimmed before hashing so cosmetic edits do not fork identity.
func IdentityKey(projectID uuid.UUID, sectionName, standardName, requirement string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	joined := strings.Join([]string{
		projectID.String(),
		norm(sectionName),
		norm(standardName),
		norm(requirement),
	}, "|")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func (s *importService) ImportCSV(ctx context.Context, projectID uuid.UUID, r io.Reader) (*ImportReport, error) {
	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, pkgerrors.ErrNotFound)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	type csvRow struct {
		line   int
		record []string
	}
	var header []string
	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w: %v", pkgerrors.ErrInvalidArgument, err)
		}
		// FieldPos reports the physical line of the first field, which
		// stays accurate when quoted fields span multiple lines.
		line, _ := reader.FieldPos(0)
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, csvRow{line: line, record: record})
	}
	if header == nil {
		return nil, fmt.Errorf("empty file: %w", pkgerrors.ErrInvalidArgument)
	}

	cols, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	seenUnmatched := map[string]struct{}{}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Per-batch memoization keyed on folded names so repeated section
		// and standard labels hit the store once.
		sectionCache := map[string]*types.Section{}
		standardCache := map[string]*types.Standard{}

		for _, rec := range rows {
			line := rec.line
			row := newRow(cols, rec.record)

			if row.section == "" || row.standard == "" || row.requirement == "" {
				report.Skipped++
				report.RowErrors = append(report.RowErrors, RowError{
					Line:    line,
					Message: "missing Section, Standard or Indicator",
				})
				continue
			}

			section, sectionCreated, err := s.resolveSection(ctx, tx, sectionCache, projectID, row.section)
			if err != nil {
				return err
			}
			if sectionCreated {
				report.SectionsCreated++
			}
			standard, standardCreated, err := s.resolveStandard(ctx, tx, standardCache, section, row.standard)
			if err != nil {
				return err
			}
			if standardCreated {
				report.StandardsCreated++
			}

			created, id, err := s.upsertObligation(ctx, tx, projectID, section, standard, row)
			if err != nil {
				return err
			}
			if created {
				report.Created++
			} else {
				report.Updated++
			}
			report.ObligationIDs = append(report.ObligationIDs, id)

			if email := strings.ToLower(row.assignedTo); email != "" {
				if _, dup := seenUnmatched[email]; !dup {
					if missing, err := s.assigneeUnmatched(ctx, email); err == nil && missing {
						seenUnmatched[email] = struct{}{}
						report.UnmatchedAssignees = append(report.UnmatchedAssignees, email)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recalculateAll(ctx, report.ObligationIDs)

	s.log.Info("import committed",
		"project_id", projectID,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
	)
	return report, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, want := range requiredHeaders {
		if _, ok := idx[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %s: %w", strings.Join(missing, ", "), pkgerrors.ErrInvalidArgument)
	}
	return idx, nil
}

type importRow struct {
	section            string
	standard           string
	requirement        string
	evidenceRequired   string
	responsiblePerson  string
	frequency          string
	assignedTo         string
	complianceEvidence string
	score              string
}

func newRow(cols map[string]int, record []string) importRow {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return importRow{
		section:            field("section"),
		standard:           field("standard"),
		requirement:        field("indicator"),
		evidenceRequired:   field("evidence required"),
		responsiblePerson:  field("responsible person"),
		frequency:          field("frequency"),
		assignedTo:         field("assigned to"),
		complianceEvidence: field("compliance evidence"),
		score:              field("score"),
	}
}

func (s *importService) resolveSection(ctx context.Context, tx *gorm.DB, cache map[string]*types.Section, projectID uuid.UUID, name string) (*types.Section, bool, error) {
	key := strings.ToLower(name)
	if sec, ok := cache[key]; ok {
		return sec, false, nil
	}
	sec, err := s.sections.FindByProjectAndNameFold(ctx, tx, projectID, name)
	if err != nil {
		return nil, false, err
	}
	created := false
	if sec == nil {
		sec, err = s.sections.Create(ctx, tx, &types.Section{ProjectID: projectID, Name: name})
		if err != nil {
			return nil, false, err
		}
		created = true
	}
	cache[key] = sec
	return sec, created, nil
}

func (s *importService) resolveStandard(ctx context.Context, tx *gorm.DB, cache map[string]*types.Standard, section *types.Section, name string) (*types.Standard, bool, error) {
	key := section.ID.String() + "|" + strings.ToLower(name)
	if std, ok := cache[key]; ok {
		return std, false, nil
	}
	std, err := s.standards.FindBySectionAndNameFold(ctx, tx, section.ID, name)
	if err != nil {
		return nil, false, err
	}
	created := false
	if std == nil {
		std, err = s.standards.Create(ctx, tx, &types.Standard{SectionID: section.ID, Name: name})
		if err != nil {
			return nil, false, err
		}
		created = true
	}
	cache[key] = std
	return std, created, nil
}

// upsertObligation resolves the row to its identity key and either updates
// the matching obligation or creates one. The unique-violation retry covers
// a concurrent import racing the same key past the lookup.
func (s *importService) upsertObligation(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, section *types.Section, standard *types.Standard, row importRow) (bool, uuid.UUID, error) {
	key := IdentityKey(projectID, section.Name, standard.Name, row.requirement)

	res, analysis, confidence := s.classifyFrequency(ctx, section.Name, standard.Name, row)

	updates := map[string]interface{}{
		"evidence_required":    row.evidenceRequired,
		"responsible_person":   row.responsiblePerson,
		"assignee_email":       strings.ToLower(row.assignedTo),
		"compliance_notes":     row.complianceEvidence,
		"frequency_text":       row.frequency,
		"normalized_frequency": res.Normalized,
		"schedule_kind":        res.ScheduleKind,
		"score":                parseScore(row.score),
		"active":               true,
	}
	if analysis != nil {
		updates["analysis_data"] = analysis
		updates["analysis_confidence"] = confidence
	}
	if res.ScheduleKind == types.ScheduleRecurring && res.Normalized.Canonical() {
		if next, ok := s.freq.NextDueDate(res.Normalized, dateOnly(s.now())); ok {
			updates["next_due_date"] = next
		}
	}

	existing, err := s.obligations.GetByIdentityKey(ctx, tx, key)
	if err != nil {
		return false, uuid.Nil, err
	}
	if existing != nil {
		if err := s.obligations.UpdateFields(ctx, tx, existing.ID, updates); err != nil {
			return false, uuid.Nil, err
		}
		return false, existing.ID, nil
	}

	ob := &types.Obligation{
		ProjectID:           projectID,
		SectionID:           section.ID,
		StandardID:          standard.ID,
		IdentityKey:         key,
		Requirement:         row.requirement,
		EvidenceRequired:    row.evidenceRequired,
		ResponsiblePerson:   row.responsiblePerson,
		AssigneeEmail:       strings.ToLower(row.assignedTo),
		ComplianceNotes:     row.complianceEvidence,
		FrequencyText:       row.frequency,
		NormalizedFrequency: res.Normalized,
		ScheduleKind:        res.ScheduleKind,
		Score:               parseScore(row.score),
		Active:              true,
	}
	if analysis != nil {
		ob.AnalysisData = analysis
		ob.AnalysisConfidence = &confidence
	}
	if next, ok := updates["next_due_date"].(time.Time); ok {
		ob.NextDueDate = &next
	}

	if _, err := s.obligations.Create(ctx, tx, []*types.Obligation{ob}); err != nil {
		if isUniqueViolation(err) {
			racer, lookupErr := s.obligations.GetByIdentityKey(ctx, tx, key)
			if lookupErr != nil {
				return false, uuid.Nil, lookupErr
			}
			if racer != nil {
				if err := s.obligations.UpdateFields(ctx, tx, racer.ID, updates); err != nil {
					return false, uuid.Nil, err
				}
				return false, racer.ID, nil
			}
		}
		return false, uuid.Nil, err
	}
	return true, ob.ID, nil
}

// classifyFrequency runs the rule-based resolver and, when it is unsure and
// a classifier is configured, asks for a second opinion. Classifier failure
// is advisory-only: logged and folded back to the rule result.
func (s *importService) classifyFrequency(ctx context.Context, sectionName, standardName string, row importRow) (FrequencyResolution, datatypes.JSON, float64) {
	res := s.freq.Resolve(row.frequency)
	if s.classifier == nil || res.Confidence >= classifierThreshold {
		return res, nil, 0
	}

	suggestion, err := s.classifier.AnalyzeFrequency(ctx, gemini.AnalyzeRequest{
		Section:          sectionName,
		Standard:         standardName,
		Requirement:      row.requirement,
		EvidenceRequired: row.evidenceRequired,
		FrequencyText:    row.frequency,
	})
	if err != nil {
		s.log.Warn("frequency classifier unavailable, keeping rule-based resolution",
			"frequency_text", row.frequency, "error", err)
		return res, nil, 0
	}

	if suggestion.ScheduleKind == string(types.ScheduleRecurring) {
		if norm := s.freq.Resolve(suggestion.NormalizedFrequency); norm.Normalized.Canonical() {
			res.ScheduleKind = types.ScheduleRecurring
			res.Normalized = norm.Normalized
			res.Kind = ResolutionCanonical
		} else {
			res.ScheduleKind = types.ScheduleRecurring
			res.Kind = ResolutionUnnormalized
		}
	} else {
		res.ScheduleKind = types.ScheduleOneTime
		res.Normalized = ""
		res.Kind = ResolutionOneTime
	}

	payload, err := json.Marshal(suggestion)
	if err != nil {
		return res, nil, 0
	}
	return res, datatypes.JSON(payload), suggestion.Confidence
}

// recalculateAll fans the post-import status derivation out over a small
// worker pool. Failures are logged; each obligation is independently
// recalculated again on its next evidence write.
func (s *importService) recalculateAll(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	workers := s.recalcWorkers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := s.compliance.Recalculate(gctx, id); err != nil {
				s.log.Warn("post-import recalculation failed", "obligation_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *importService) assigneeUnmatched(ctx context.Context, email string) (bool, error) {
	if s.users == nil || !strings.Contains(email, "@") {
		return false, nil
	}
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		s.log.Warn("assignee lookup failed", "email", email, "error", err)
		return false, err
	}
	return !exists, nil
}

func parseScore(raw string) int {
	if raw == "" {
		return defaultScore
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultScore
	}
	return n
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
