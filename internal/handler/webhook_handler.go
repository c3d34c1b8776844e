package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MUOBSocial/MUOB-creators/internal/model"
	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/internal/tally"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// eventSubmissionCreated is the only Tally event type acted on
const eventSubmissionCreated = "SUBMISSION_CREATED"

// WebhookHandler receives unauthenticated push notifications from Tally.
// The endpoint never fails observably: every internal outcome, including
// errors, is acknowledged with 200 so the sender does not retry.
type WebhookHandler struct {
	store *store.Store
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(s *store.Store) *WebhookHandler {
	return &WebhookHandler{store: s}
}

type webhookPayload struct {
	EventType string      `json:"eventType"`
	Data      webhookData `json:"data"`
}

type webhookData struct {
	FormID       string                 `json:"formId"`
	SubmissionID string                 `json:"submissionId"`
	CreatedAt    time.Time              `json:"createdAt"`
	Fields       map[string]interface{} `json:"fields"`
}

// HandleTally handles POST /api/webhook/tally
func (h *WebhookHandler) HandleTally(c echo.Context) error {
	log := logger.FromContext(c)

	ack := func(outcome string) error {
		prometheus.RecordWebhookEvent(outcome)
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var payload webhookPayload
	if err := c.Bind(&payload); err != nil {
		log.Warn("Unparseable webhook payload", zap.Error(err))
		return ack("error")
	}

	if payload.EventType != eventSubmissionCreated {
		log.Info("Ignoring webhook event", zap.String("event_type", payload.EventType))
		return ack("ignored")
	}

	brief, err := h.store.BriefByFormID(payload.Data.FormID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info("Webhook for unconnected form", zap.String("form_id", payload.Data.FormID))
			return ack("no_brief")
		}
		log.Error("Failed to look up brief for webhook", zap.Error(err))
		return ack("error")
	}

	submittedAt := payload.Data.CreatedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	raw, _ := json.Marshal(payload.Data)

	app := tallyApplication(brief.ID, payload.Data, submittedAt, raw)
	created, err := h.store.InsertApplication(&app)
	if err != nil {
		log.Error("Failed to insert application from webhook",
			zap.String("submission_id", payload.Data.SubmissionID),
			zap.Error(err))
		return ack("error")
	}

	if !created {
		log.Info("Duplicate webhook submission ignored",
			zap.String("submission_id", payload.Data.SubmissionID))
		return ack("duplicate")
	}

	log.Info("Application created from webhook",
		zap.Uint("brief_id", brief.ID),
		zap.String("submission_id", payload.Data.SubmissionID))
	return ack("created")
}

func tallyApplication(briefID uint, data webhookData, submittedAt time.Time, raw []byte) model.Application {
	return model.Application{
		BriefID:           briefID,
		TallySubmissionID: data.SubmissionID,
		Email:             tally.ExtractField(data.Fields, tally.EmailAliases...),
		Instagram:         tally.ExtractField(data.Fields, tally.InstagramAliases...),
		Portfolio:         tally.ExtractField(data.Fields, tally.PortfolioAliases...),
		ContentProposal:   tally.ExtractField(data.Fields, tally.ProposalAliases...),
		Status:            model.ApplicationStatusSubmitted,
		SubmittedAt:       submittedAt,
		RawTallyData:      string(raw),
	}
}
