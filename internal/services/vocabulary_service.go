// Package services – VocabularyService
//
// This file implements VocabularyService, the application-level component that
// owns the lifecycle of vocabulary records. It validates inputs, derives the
// next review date from the step label through the shared schedule.Calculator,
// and coordinates repository operations for create, edit, review, batch
// review, delete, listing and spreadsheet import.
//
// Every path that writes a step also writes the target computed from it in the
// same statement. The only way to persist a caller-chosen target is the create
// path (unless StrictTargets is set) and the import path (always).
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry record ids, step labels and result counts where applicable.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/repo"
	"github.com/tbourn/go-vocab-backend/internal/schedule"
	"github.com/tbourn/go-vocab-backend/internal/search"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "services/VocabularyService"

// Review modes used as the "mode" label of vocab_reviews_total.
const (
	ReviewModeSingle = "single"
	ReviewModeBatch  = "batch"
)

var reviewsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vocab_reviews_total",
		Help: "Number of vocabulary records rescheduled by a review.",
	},
	[]string{"mode"},
)

func init() {
	prometheus.MustRegister(reviewsTotal)
}

// VocabularyRepo defines the repository contract required by
// VocabularyService. Implementations receive the *gorm.DB to run on, which is
// a transaction handle inside Import.
type VocabularyRepo interface {
	// CreateVocabulary inserts a fully populated record.
	CreateVocabulary(ctx context.Context, db *gorm.DB, v *domain.Vocabulary) error

	// ListVocabularies returns records ordered by target, then id.
	ListVocabularies(ctx context.Context, db *gorm.DB, f repo.ListFilter) ([]domain.Vocabulary, error)

	// CountDue counts records whose target is on or before day.
	CountDue(ctx context.Context, db *gorm.DB, day string) (int64, error)

	// GetVocabulary fetches one record by id.
	GetVocabulary(ctx context.Context, db *gorm.DB, id string) (*domain.Vocabulary, error)

	// UpdateVocabulary applies a partial change set and returns the row.
	UpdateVocabulary(ctx context.Context, db *gorm.DB, id string, ch repo.VocabularyChanges) (*domain.Vocabulary, error)

	// UpdateSchedule writes step and target of one record and returns the row.
	UpdateSchedule(ctx context.Context, db *gorm.DB, id, step, target string) (*domain.Vocabulary, error)

	// UpdateScheduleBatch writes one (step, target) pair to many records.
	UpdateScheduleBatch(ctx context.Context, db *gorm.DB, ids []string, step, target string) (int64, error)

	// DeleteVocabularies removes records by id.
	DeleteVocabularies(ctx context.Context, db *gorm.DB, ids []string) (int64, error)
}

// CreateInput carries the fields of a new record.
type CreateInput struct {
	English      string
	Vietnamese   string
	IPA          string
	Example      string
	Collection   string
	PartOfSpeech string
	Step         string
	// Target, when set, replaces the computed date (see Create).
	Target string
	// Restore marks rows coming from an import; their Target is always kept.
	Restore bool
}

// EditInput is a partial edit. Nil fields are left untouched.
type EditInput struct {
	English      *string
	Vietnamese   *string
	IPA          *string
	Example      *string
	Collection   *string
	PartOfSpeech *string
	Step         *string
}

// ListQuery selects records for List.
type ListQuery struct {
	// Query is a diacritic- and case-insensitive substring filter.
	Query string
	// Collection is an exact-match filter.
	Collection string
	// DueOnly keeps records whose target is today or earlier.
	DueOnly bool
	// Limit caps the result; <= 0 means all.
	Limit int
}

// BatchResult summarizes a batch review.
type BatchResult struct {
	Updated int64  `json:"updated" example:"3"`
	Step    string `json:"step" example:"7-15"`
	Target  string `json:"target" example:"2025-01-20"`
}

// ImportRow is one record to restore. Line is its position in the source
// file, used in error messages; zero means the row's index in the batch.
type ImportRow struct {
	Line  int
	Input CreateInput
}

// ImportResult summarizes an import.
type ImportResult struct {
	Created int      `json:"created" example:"120"`
	Skipped int      `json:"skipped" example:"2"`
	Errors  []string `json:"errors"`
}

// VocabularyService provides vocabulary operations. It enforces the
// step→target rule on every write path.
type VocabularyService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the vocabulary repository used by this service.
	Repo VocabularyRepo
	// Calc computes target dates. Shared with the due digest job.
	Calc *schedule.Calculator

	// StrictTargets ignores caller-supplied targets on create (import rows
	// are not affected).
	StrictTargets bool

	// NewID generates record ids. Defaults to UUIDv7.
	NewID func() (string, error)
}

// NewVocabularyService constructs a VocabularyService using calc for dates.
// A nil calc falls back to the local time zone.
func NewVocabularyService(db *gorm.DB, r VocabularyRepo, calc *schedule.Calculator) *VocabularyService {
	if calc == nil {
		calc = schedule.NewCalculator(nil)
	}
	return &VocabularyService{
		DB:    db,
		Repo:  r,
		Calc:  calc,
		NewID: newUUIDv7,
	}
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create validates in and inserts a new record. An empty step becomes "0".
// The target is computed from the step unless the caller supplied one and
// overrides are allowed (StrictTargets off, or in.Restore).
func (s *VocabularyService) Create(ctx context.Context, in CreateInput) (*domain.Vocabulary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Create")
	defer span.End()

	v, err := s.build(in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("vocab.id", v.ID),
		attribute.String("vocab.step", v.Step),
	)
	if err := s.Repo.CreateVocabulary(ctx, s.DB, v); err != nil {
		return nil, err
	}
	return v, nil
}

// build normalizes and validates in and returns the record to insert.
func (s *VocabularyService) build(in CreateInput) (*domain.Vocabulary, error) {
	english := strings.TrimSpace(in.English)
	vietnamese := strings.TrimSpace(in.Vietnamese)
	if english == "" || vietnamese == "" {
		return nil, ErrMissingTerm
	}

	step := strings.TrimSpace(in.Step)
	if step == "" {
		step = schedule.DefaultStep
	}
	if !schedule.Storable(step) {
		return nil, ErrInvalidStep
	}

	target := s.Calc.Target(step)
	if t := strings.TrimSpace(in.Target); t != "" && (in.Restore || !s.StrictTargets) {
		if !schedule.ValidDate(t) {
			return nil, ErrInvalidTarget
		}
		target = t
	}

	newID := s.NewID
	if newID == nil {
		newID = newUUIDv7
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	return &domain.Vocabulary{
		ID:           id,
		English:      english,
		Vietnamese:   vietnamese,
		IPA:          strings.TrimSpace(in.IPA),
		Example:      strings.TrimSpace(in.Example),
		Collection:   strings.TrimSpace(in.Collection),
		PartOfSpeech: strings.TrimSpace(in.PartOfSpeech),
		Step:         step,
		Target:       target,
	}, nil
}

// Get returns one record by id.
func (s *VocabularyService) Get(ctx context.Context, id string) (*domain.Vocabulary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Get",
		trace.WithAttributes(attribute.String("vocab.id", id)),
	)
	defer span.End()

	v, err := s.Repo.GetVocabulary(ctx, s.DB, id)
	return v, mapNotFound(err)
}

// List returns records ordered by ascending target (then id) narrowed by q.
// The text filter runs in memory after the store query so diacritics fold
// the same way on every database.
func (s *VocabularyService) List(ctx context.Context, q ListQuery) ([]domain.Vocabulary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "List",
		trace.WithAttributes(
			attribute.Bool("due_only", q.DueOnly),
			attribute.String("collection", q.Collection),
			attribute.Int("limit", q.Limit),
		),
	)
	defer span.End()

	f := repo.ListFilter{Collection: strings.TrimSpace(q.Collection)}
	if q.DueOnly {
		f.DueOn = s.today()
	}
	query := strings.TrimSpace(q.Query)
	if query == "" {
		f.Limit = q.Limit
	}

	items, err := s.Repo.ListVocabularies(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	if query != "" {
		items = search.Filter(items, query, searchFields, search.WithMaxResults(q.Limit))
	}
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, nil
}

func searchFields(v domain.Vocabulary) []string {
	return []string{v.English, v.Vietnamese, v.IPA, v.Example, v.Collection, v.PartOfSpeech, v.Target, v.Step}
}

// CountDue returns how many records are due today or earlier.
func (s *VocabularyService) CountDue(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CountDue")
	defer span.End()
	return s.Repo.CountDue(ctx, s.DB, s.today())
}

// Edit applies a partial edit. Supplied english/vietnamese must be non-empty.
// When in.Step is set the target is recomputed and written with it; otherwise
// neither step nor target changes.
func (s *VocabularyService) Edit(ctx context.Context, id string, in EditInput) (*domain.Vocabulary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Edit",
		trace.WithAttributes(attribute.String("vocab.id", id)),
	)
	defer span.End()

	ch := repo.VocabularyChanges{
		IPA:          trimmed(in.IPA),
		Example:      trimmed(in.Example),
		Collection:   trimmed(in.Collection),
		PartOfSpeech: trimmed(in.PartOfSpeech),
	}
	for _, p := range []struct {
		in  *string
		out **string
	}{{in.English, &ch.English}, {in.Vietnamese, &ch.Vietnamese}} {
		if p.in == nil {
			continue
		}
		t := strings.TrimSpace(*p.in)
		if t == "" {
			return nil, ErrMissingTerm
		}
		*p.out = &t
	}
	if in.Step != nil {
		step, err := checkStep(*in.Step)
		if err != nil {
			return nil, err
		}
		target := s.Calc.Target(step)
		ch.Step, ch.Target = &step, &target
		span.SetAttributes(attribute.String("vocab.step", step))
	}

	v, err := s.Repo.UpdateVocabulary(ctx, s.DB, id, ch)
	return v, mapNotFound(err)
}

// Review records a review of one record: it computes the target for step and
// writes both, returning the persisted record.
func (s *VocabularyService) Review(ctx context.Context, id, step string) (*domain.Vocabulary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Review",
		trace.WithAttributes(
			attribute.String("vocab.id", id),
			attribute.String("vocab.step", step),
		),
	)
	defer span.End()

	step, err := checkStep(step)
	if err != nil {
		return nil, err
	}
	target := s.Calc.Target(step)

	v, err := s.Repo.UpdateSchedule(ctx, s.DB, id, step, target)
	if err != nil {
		return nil, mapNotFound(err)
	}
	reviewsTotal.WithLabelValues(ReviewModeSingle).Inc()
	return v, nil
}

// BatchReview applies step to every id with one shared target (a single
// random draw for ranged steps) in one bulk update. Unknown ids are skipped;
// Updated reports how many rows changed.
func (s *VocabularyService) BatchReview(ctx context.Context, ids []string, step string) (*BatchResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "BatchReview",
		trace.WithAttributes(
			attribute.Int("ids.count", len(ids)),
			attribute.String("vocab.step", step),
		),
	)
	defer span.End()

	clean, err := cleanIDs(ids)
	if err != nil {
		return nil, err
	}
	step, err = checkStep(step)
	if err != nil {
		return nil, err
	}
	target := s.Calc.Target(step)

	n, err := s.Repo.UpdateScheduleBatch(ctx, s.DB, clean, step, target)
	if err != nil {
		return nil, err
	}
	reviewsTotal.WithLabelValues(ReviewModeBatch).Add(float64(n))
	span.SetAttributes(attribute.Int64("result.updated", n))
	return &BatchResult{Updated: n, Step: step, Target: target}, nil
}

// Delete removes every record in ids and returns the number deleted. An
// empty or malformed id set is rejected before the store is touched.
func (s *VocabularyService) Delete(ctx context.Context, ids []string) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int("ids.count", len(ids))),
	)
	defer span.End()

	clean, err := cleanIDs(ids)
	if err != nil {
		return 0, err
	}
	return s.Repo.DeleteVocabularies(ctx, s.DB, clean)
}

// Import creates every row in restore mode inside one transaction. Rows that
// fail validation are skipped and reported by position; a store error aborts
// the whole import.
func (s *VocabularyService) Import(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Import",
		trace.WithAttributes(attribute.Int("rows.count", len(rows))),
	)
	defer span.End()

	res := &ImportResult{Errors: []string{}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			in := row.Input
			in.Restore = true
			v, err := s.build(in)
			if err != nil {
				line := row.Line
				if line <= 0 {
					line = i + 1
				}
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
				continue
			}
			if err := s.Repo.CreateVocabulary(ctx, tx, v); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("result.created", res.Created),
		attribute.Int("result.skipped", res.Skipped),
	)
	return res, nil
}

func (s *VocabularyService) today() string {
	return s.Calc.Today().Format(schedule.DateLayout)
}

// cleanIDs trims ids and rejects an empty set or blank entries. Duplicates
// are dropped, first occurrence wins.
// checkStep trims a review step and rejects blank or unstorable labels.
func checkStep(step string) (string, error) {
	step = strings.TrimSpace(step)
	switch {
	case step == "":
		return "", ErrEmptyStep
	case !schedule.Storable(step):
		return "", ErrInvalidStep
	}
	return step, nil
}

func cleanIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIDs
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, ErrInvalidIDs
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	return &t
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrVocabularyNotFound
	}
	return err
}
