// Vocabulary HTTP handlers.
//
// This file exposes REST endpoints for vocabulary resources:
//   - GET    /vocabularies          (list, filters, ETag support)
//   - POST   /vocabularies          (create, idempotent with Idempotency-Key)
//   - PATCH  /vocabularies          (batch review, single review or edit)
//   - DELETE /vocabularies          (delete by id set)
//   - GET    /vocabularies/due      (due today or earlier)
//   - GET    /vocabularies/export   (xlsx download)
//   - POST   /vocabularies/import   (xlsx/csv upload, restore mode)
//   - GET    /steps                 (step option catalog)
//
// Handlers are transport-thin: they validate input, call the vocabulary
// service, and translate results into HTTP responses.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/http/middleware"
	"github.com/tbourn/go-vocab-backend/internal/repo"
	"github.com/tbourn/go-vocab-backend/internal/schedule"
	"github.com/tbourn/go-vocab-backend/internal/services"
	"github.com/tbourn/go-vocab-backend/internal/sheet"
	"github.com/tbourn/go-vocab-backend/internal/utils"
)

// IdempotencyScopeCreate namespaces idempotency keys of POST /vocabularies.
const IdempotencyScopeCreate = "vocabularies:create"

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

//
// Service contract (context-aware)
//

// VocabularyService defines vocabulary operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type VocabularyService interface {
	// Create inserts a record; the target derives from the step unless overridden.
	Create(ctx context.Context, in services.CreateInput) (*domain.Vocabulary, error)
	// Get returns one record.
	Get(ctx context.Context, id string) (*domain.Vocabulary, error)
	// List returns records ordered by target.
	List(ctx context.Context, q services.ListQuery) ([]domain.Vocabulary, error)
	// Edit applies a partial edit; a supplied step recomputes the target.
	Edit(ctx context.Context, id string, in services.EditInput) (*domain.Vocabulary, error)
	// Review reschedules one record.
	Review(ctx context.Context, id, step string) (*domain.Vocabulary, error)
	// BatchReview reschedules many records with one shared target.
	BatchReview(ctx context.Context, ids []string, step string) (*services.BatchResult, error)
	// Delete removes records by id.
	Delete(ctx context.Context, ids []string) (int64, error)
	// Import restores rows from a spreadsheet.
	Import(ctx context.Context, rows []services.ImportRow) (*services.ImportResult, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for vocabularies.
type Handlers struct {
	svc     VocabularyService
	idemTTL time.Duration
}

// New constructs Handlers bound to svc. idemTTL is how long an
// Idempotency-Key is remembered; <= 0 defaults to 24h.
func New(svc VocabularyService, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{svc: svc, idemTTL: idemTTL}
}

//
// DTOs
//

// CreateVocabularyRequest is the JSON payload for creating a record.
type CreateVocabularyRequest struct {
	English      string `json:"english" example:"cat"`
	Vietnamese   string `json:"vietnamese" example:"con mèo"`
	IPA          string `json:"ipa" example:"/kæt/"`
	Example      string `json:"example" example:"The cat sleeps on the sofa."`
	Collection   string `json:"collection" example:"animals"`
	PartOfSpeech string `json:"partOfSpeech" example:"noun"`
	// Step defaults to "0".
	Step *string `json:"step,omitempty" example:"0"`
	// Steps is the legacy name of Step; Step wins when both are sent.
	Steps *string `json:"steps,omitempty" swaggerignore:"true"`
	// Target overrides the computed review date unless strict targets are on.
	Target string `json:"target,omitempty" example:"2025-01-10"`
}

// PatchVocabularyRequest is the polymorphic PATCH payload:
//   - {ids, step}: batch review
//   - {id, step}: review one record
//   - {id, english, ...}: edit one record (step optional)
type PatchVocabularyRequest struct {
	ID           string   `json:"id,omitempty" example:"0190f5c2-6a43-7c1e-9d2b-5f0a1e2c3d4e"`
	IDs          []string `json:"ids,omitempty"`
	Step         *string  `json:"step,omitempty" example:"7-15"`
	Steps        *string  `json:"steps,omitempty" swaggerignore:"true"`
	English      *string  `json:"english,omitempty"`
	Vietnamese   *string  `json:"vietnamese,omitempty"`
	IPA          *string  `json:"ipa,omitempty"`
	Example      *string  `json:"example,omitempty"`
	Collection   *string  `json:"collection,omitempty"`
	PartOfSpeech *string  `json:"partOfSpeech,omitempty"`
	// Target is accepted for compatibility and ignored; the date always
	// follows the step on this path.
	Target *string `json:"target,omitempty" swaggerignore:"true"`
}

func (r PatchVocabularyRequest) hasEdits() bool {
	return r.English != nil || r.Vietnamese != nil || r.IPA != nil ||
		r.Example != nil || r.Collection != nil || r.PartOfSpeech != nil
}

// DeleteVocabulariesRequest is the JSON payload for deleting records.
type DeleteVocabulariesRequest struct {
	IDs []string `json:"ids"`
}

// DeleteVocabulariesResponse reports how many records were removed.
type DeleteVocabulariesResponse struct {
	Deleted int64 `json:"deleted" example:"2"`
}

// stepField resolves the step/steps alias pair.
func stepField(step, steps *string) *string {
	if step != nil {
		return step
	}
	return steps
}

//
// Helpers
//

// svcInternals exposes the concrete service's DB and calculator when
// available, for best-effort ETag and idempotency work.
func (h *Handlers) svcInternals() (*gorm.DB, *schedule.Calculator) {
	if svc, ok := h.svc.(*services.VocabularyService); ok {
		return svc.DB, svc.Calc
	}
	return nil, nil
}

func (h *Handlers) today() string {
	_, calc := h.svcInternals()
	if calc == nil {
		calc = schedule.NewCalculator(nil)
	}
	return calc.Today().Format(schedule.DateLayout)
}

// listETag derives a weak validator from the table stats, the query string
// and the current day (due filtering changes at midnight).
func (h *Handlers) listETag(c *gin.Context) (string, bool) {
	db, _ := h.svcInternals()
	if db == nil {
		return "", false
	}
	st, err := repo.VocabularyStats(c.Request.Context(), db)
	if err != nil {
		return "", false
	}
	hs := fnv.New32a()
	_, _ = hs.Write([]byte(c.Request.URL.RawQuery))
	_, _ = hs.Write([]byte(h.today()))
	return fmt.Sprintf(`W/"vocab:%s:%08x"`, st.Version(), hs.Sum32()), true
}

// replayed returns the record an earlier create stored under key, if any.
func (h *Handlers) replayed(ctx context.Context, db *gorm.DB, key string) *domain.Vocabulary {
	rec, err := repo.GetIdempotency(ctx, db, IdempotencyScopeCreate, key, time.Now().UTC())
	if err != nil {
		return nil
	}
	prev, err := h.svc.Get(ctx, rec.ResourceID)
	if err != nil {
		return nil
	}
	return prev
}

// claimIdempotency stores key for v. If a concurrent create with the same
// key claimed it first, v is deleted and the winner's record is returned.
func (h *Handlers) claimIdempotency(ctx context.Context, db *gorm.DB, key string, v *domain.Vocabulary) (*domain.Vocabulary, error) {
	_, err := repo.CreateIdempotency(ctx, db, IdempotencyScopeCreate, key, v.ID, http.StatusCreated, h.idemTTL)
	if !errors.Is(err, repo.ErrDuplicate) {
		return nil, err
	}
	winner := h.replayed(ctx, db, key)
	if winner == nil {
		return nil, fmt.Errorf("key %q claimed but its record is gone: %w", key, err)
	}
	if _, err := h.svc.Delete(ctx, []string{v.ID}); err != nil {
		return nil, fmt.Errorf("drop duplicate %s: %w", v.ID, err)
	}
	return winner, nil
}

// idempotencyKey prefers the key validated by middleware and falls back to
// the raw header when the middleware is not mounted.
func idempotencyKey(c *gin.Context) string {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

func queryLimit(c *gin.Context) (int, bool) {
	n, err := utils.ParseLimit(c.Query("limit"), utils.MaxListLimit)
	return n, err == nil
}

//
// Handlers
//

// ListVocabularies godoc
// @ID          listVocabularies
// @Summary     List vocabularies
// @Description Returns records ordered by ascending target date. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Vocabularies
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"                      example(W/\"vocab:3:0:00000000\")
// @Param       q              query   string  false "Diacritic-insensitive text filter"              example(meo)
// @Param       collection     query   string  false "Exact collection name"                          example(animals)
// @Param       due            query   bool    false "Only records due today or earlier"
// @Param       limit          query   int     false "Maximum number of records (0 = all)"           minimum(0)
//
// @Success     200  {array}  domain.Vocabulary
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /vocabularies [get]
func (h *Handlers) ListVocabularies(c *gin.Context) {
	q := services.ListQuery{
		Query:      c.Query("q"),
		Collection: c.Query("collection"),
	}
	if raw := c.Query("due"); raw != "" {
		due, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "due must be a boolean")
			return
		}
		q.DueOnly = due
	}
	limit, valid := queryLimit(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, utils.ErrBadLimit.Error())
		return
	}
	q.Limit = limit

	// ETag pre-check (best effort).
	if etag, found := h.listETag(c); found {
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// DueVocabularies godoc
// @ID          dueVocabularies
// @Summary     List due vocabularies
// @Description Returns records whose target date is today or earlier, oldest first.
// @Tags        Vocabularies
// @Produce     json
//
// @Param       limit  query  int  false "Maximum number of records (0 = all)"  minimum(0)
//
// @Success     200  {array}  domain.Vocabulary
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /vocabularies/due [get]
func (h *Handlers) DueVocabularies(c *gin.Context) {
	limit, valid := queryLimit(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, utils.ErrBadLimit.Error())
		return
	}
	items, err := h.svc.List(c.Request.Context(), services.ListQuery{DueOnly: true, Limit: limit})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateVocabulary godoc
// @ID          createVocabulary
// @Summary     Create a vocabulary record
// @Description Creates a record. The target date derives from the step (default "0", due today) unless a target is supplied and strict targets are off.
// @Description Supports idempotency via the Idempotency-Key header (same key → same record).
// @Tags        Vocabularies
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateVocabularyRequest  true  "Create payload"
//
// @Success     201  {object}  domain.Vocabulary
// @Success     200  {object}  domain.Vocabulary  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vocabularies [post]
func (h *Handlers) CreateVocabulary(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateVocabularyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// Idempotency (replay path).
	idemKey := idempotencyKey(c)
	db, _ := h.svcInternals()
	if idemKey != "" && db != nil {
		if prev := h.replayed(ctx, db, idemKey); prev != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, prev)
			return
		}
	}

	in := services.CreateInput{
		English:      req.English,
		Vietnamese:   req.Vietnamese,
		IPA:          req.IPA,
		Example:      req.Example,
		Collection:   req.Collection,
		PartOfSpeech: req.PartOfSpeech,
		Target:       req.Target,
	}
	if s := stepField(req.Step, req.Steps); s != nil {
		in.Step = *s
	}

	v, err := h.svc.Create(ctx, in)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	if idemKey != "" && db != nil {
		winner, err := h.claimIdempotency(ctx, db, idemKey, v)
		switch {
		case err != nil:
			middleware.LoggerFrom(c).Warn().Err(err).Str("vocab_id", v.ID).Msg("idempotency record not stored")
		case winner != nil:
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, winner)
			return
		}
	}

	ok(c, http.StatusCreated, v)
}

// PatchVocabularies godoc
// @ID          patchVocabularies
// @Summary     Review or edit vocabularies
// @Description With `ids`: batch review, every record gets the same step and one shared target date; returns a summary.
// @Description With `id` and only `step`: review one record. With `id` and other fields: edit; a supplied step recomputes the target.
// @Description Single-record forms return the persisted record. A supplied `target` is ignored.
// @Tags        Vocabularies
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.PatchVocabularyRequest  true  "Review or edit payload"
//
// @Success     200  {object}  domain.Vocabulary     "Single-record review or edit; batch review returns services.BatchResult"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Vocabulary not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /vocabularies [patch]
func (h *Handlers) PatchVocabularies(c *gin.Context) {
	ctx := c.Request.Context()

	var req PatchVocabularyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	step := stepField(req.Step, req.Steps)

	// Batch review.
	if req.IDs != nil {
		var label string
		if step != nil {
			label = *step
		}
		res, err := h.svc.BatchReview(ctx, req.IDs, label)
		if err != nil {
			failService(c, err, ErrCodeUpdateFailed)
			return
		}
		ok(c, http.StatusOK, res)
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id or ids required")
		return
	}

	// Review one record.
	if step != nil && !req.hasEdits() {
		v, err := h.svc.Review(ctx, id, *step)
		if err != nil {
			failService(c, err, ErrCodeUpdateFailed)
			return
		}
		ok(c, http.StatusOK, v)
		return
	}

	// Full edit.
	v, err := h.svc.Edit(ctx, id, services.EditInput{
		English:      req.English,
		Vietnamese:   req.Vietnamese,
		IPA:          req.IPA,
		Example:      req.Example,
		Collection:   req.Collection,
		PartOfSpeech: req.PartOfSpeech,
		Step:         step,
	})
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, v)
}

// DeleteVocabularies godoc
// @ID          deleteVocabularies
// @Summary     Delete vocabularies
// @Description Deletes every record whose id is listed. An empty list is rejected.
// @Tags        Vocabularies
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.DeleteVocabulariesRequest  true  "Ids to delete"
//
// @Success     200  {object}  handlers.DeleteVocabulariesResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /vocabularies [delete]
func (h *Handlers) DeleteVocabularies(c *gin.Context) {
	var req DeleteVocabulariesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	n, err := h.svc.Delete(c.Request.Context(), req.IDs)
	if err != nil {
		failService(c, err, ErrCodeDeleteFailed)
		return
	}
	ok(c, http.StatusOK, DeleteVocabulariesResponse{Deleted: n})
}

// ListSteps godoc
// @ID          listSteps
// @Summary     Step options
// @Description Returns the difficulty buttons shown after a review and the step label each one sends.
// @Tags        Steps
// @Produce     json
// @Success     200  {array}  schedule.Option
// @Router      /steps [get]
func (h *Handlers) ListSteps(c *gin.Context) {
	ok(c, http.StatusOK, schedule.Options)
}

// ExportVocabularies godoc
// @ID          exportVocabularies
// @Summary     Export vocabularies
// @Description Downloads every record as an xlsx workbook (sheet "Vocabulary").
// @Tags        Vocabularies
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success     200  {file}    file
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /vocabularies/export [get]
func (h *Handlers) ExportVocabularies(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), services.ListQuery{})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := sheet.Export(&buf, items); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="vocabulary-%s.xlsx"`, h.today()))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// ImportVocabularies godoc
// @ID          importVocabularies
// @Summary     Import vocabularies
// @Description Restores records from an xlsx or csv file laid out like the export. Stored targets are kept as-is.
// @Description Incomplete rows are skipped and reported; a storage failure aborts the whole import.
// @Tags        Vocabularies
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       file  formData  file  true  "Spreadsheet (.xlsx or .csv)"
//
// @Success     200  {object}  services.ImportResult
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /vocabularies/import [post]
func (h *Handlers) ImportVocabularies(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"file\" required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read upload")
		return
	}
	defer f.Close()

	rows, rowErrs, err := sheet.Decode(f, fh.Filename)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	in := make([]services.ImportRow, 0, len(rows))
	for _, r := range rows {
		in = append(in, services.ImportRow{
			Line: r.Line,
			Input: services.CreateInput{
				English:      r.English,
				Vietnamese:   r.Vietnamese,
				IPA:          r.IPA,
				Example:      r.Example,
				Collection:   r.Collection,
				PartOfSpeech: r.PartOfSpeech,
				Step:         r.Step,
				Target:       r.Target,
			},
		})
	}

	res, err := h.svc.Import(c.Request.Context(), in)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeImportFailed, err.Error())
		return
	}
	if len(rowErrs) > 0 {
		msgs := make([]string, 0, len(rowErrs)+len(res.Errors))
		for _, re := range rowErrs {
			msgs = append(msgs, re.Error())
		}
		res.Errors = append(msgs, res.Errors...)
		res.Skipped += len(rowErrs)
	}
	ok(c, http.StatusOK, res)
}
