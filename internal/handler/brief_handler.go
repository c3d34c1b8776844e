package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MUOBSocial/MUOB-creators/internal/model"
	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/internal/tally"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// BriefHandler serves the admin brief endpoints and the Tally form listing
type BriefHandler struct {
	store *store.Store
	tally *tally.Client
}

// NewBriefHandler creates a brief handler
func NewBriefHandler(s *store.Store, t *tally.Client) *BriefHandler {
	return &BriefHandler{store: s, tally: t}
}

// BriefRequest defines the structure for brief creation requests
type BriefRequest struct {
	TallyFormID   string `json:"tallyFormId"`
	TallyFormName string `json:"tallyFormName"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	Tier          string `json:"tier"`
	Requirements  string `json:"requirements"`
	Dates         string `json:"dates"`
}

type formWithStatus struct {
	tally.Form
	IsConnected bool `json:"isConnected"`
}

// ListTallyForms handles GET /api/admin/tally/forms. Each form is annotated
// with whether it is already connected to a brief.
func (h *BriefHandler) ListTallyForms(c echo.Context) error {
	log := logger.FromContext(c)

	forms, err := h.tally.ListForms(c.Request().Context())
	if err != nil {
		log.Error("Failed to fetch Tally forms", zap.Error(err))
		prometheus.RecordTallyError("forms")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch Tally forms"})
	}

	connected, err := h.store.ConnectedFormIDs()
	if err != nil {
		log.Error("Failed to load connected form IDs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	annotated := make([]formWithStatus, 0, len(forms))
	for _, form := range forms {
		annotated = append(annotated, formWithStatus{
			Form:        form,
			IsConnected: connected[form.ID],
		})
	}

	log.Info("Listed Tally forms", zap.Int("count", len(annotated)))
	return c.JSON(http.StatusOK, echo.Map{"forms": annotated})
}

// CreateBrief handles POST /api/admin/briefs. The brief is created first and
// kept even if the synchronous submission import fails: a gateway failure
// downgrades to a warning in an otherwise successful response.
func (h *BriefHandler) CreateBrief(c echo.Context) error {
	log := logger.FromContext(c)

	var req BriefRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid brief request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.TallyFormID == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tallyFormId and title are required"})
	}

	brief := model.Brief{
		TallyFormID:   req.TallyFormID,
		TallyFormName: req.TallyFormName,
		Title:         req.Title,
		Location:      req.Location,
		Tier:          req.Tier,
		Requirements:  req.Requirements,
		Dates:         req.Dates,
		Status:        model.BriefStatusLive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateBrief(&brief); err != nil {
		if err == store.ErrDuplicateForm {
			log.Warn("Form already connected to a brief", zap.String("tally_form_id", req.TallyFormID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "this form is already connected to a brief"})
		}
		log.Error("Failed to create brief", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create brief"})
	}

	log.Info("Brief created",
		zap.Uint("brief_id", brief.ID),
		zap.String("tally_form_id", brief.TallyFormID),
		zap.String("title", brief.Title))

	// Import all current submissions for the connected form
	imported, err := h.importSubmissions(c, brief.ID, brief.TallyFormID)
	if err != nil {
		log.Error("Submission import failed, brief kept", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{
			"success":       true,
			"briefId":       brief.ID,
			"importedCount": 0,
			"warning":       "brief created but failed to import existing submissions",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"briefId":       brief.ID,
		"importedCount": imported,
	})
}

func (h *BriefHandler) importSubmissions(c echo.Context, briefID uint, formID string) (int, error) {
	submissions, err := h.tally.ListSubmissions(c.Request().Context(), formID)
	if err != nil {
		prometheus.RecordTallyError("submissions")
		return 0, err
	}

	if len(submissions) == 0 {
		return 0, nil
	}

	apps := make([]model.Application, 0, len(submissions))
	for _, submission := range submissions {
		apps = append(apps, applicationFromSubmission(briefID, submission))
	}

	imported, err := h.store.ImportSubmissions(apps)
	if err != nil {
		return 0, err
	}

	prometheus.SubmissionsImportedCounter.Add(float64(imported))
	return imported, nil
}

// applicationFromSubmission maps a Tally submission onto an application row,
// probing the field bag for known aliases of each logical field.
func applicationFromSubmission(briefID uint, submission tally.Submission) model.Application {
	submittedAt := submission.CreatedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	raw, _ := json.Marshal(submission)

	return model.Application{
		BriefID:           briefID,
		TallySubmissionID: submission.ID,
		Email:             tally.ExtractField(submission.Fields, tally.EmailAliases...),
		Instagram:         tally.ExtractField(submission.Fields, tally.InstagramAliases...),
		Portfolio:         tally.ExtractField(submission.Fields, tally.PortfolioAliases...),
		ContentProposal:   tally.ExtractField(submission.Fields, tally.ProposalAliases...),
		Status:            model.ApplicationStatusSubmitted,
		SubmittedAt:       submittedAt,
		RawTallyData:      string(raw),
	}
}

// ListBriefs handles GET /api/admin/briefs
func (h *BriefHandler) ListBriefs(c echo.Context) error {
	log := logger.FromContext(c)

	briefs, err := h.store.ListBriefs()
	if err != nil {
		log.Error("Failed to list briefs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Listed briefs", zap.Int("count", len(briefs)))
	return c.JSON(http.StatusOK, echo.Map{"briefs": briefs})
}

// UpdateBriefStatus handles PUT /api/admin/brief/:id/status
func (h *BriefHandler) UpdateBriefStatus(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brief id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.store.UpdateBriefStatus(uint(id), req.Status); err != nil {
		log.Error("Failed to update brief status",
			zap.Uint64("brief_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Brief status updated",
		zap.Uint64("brief_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
