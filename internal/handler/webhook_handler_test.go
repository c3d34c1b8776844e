package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MUOBSocial/MUOB-creators/internal/model"
)

func webhookPayloadFor(formID, submissionID, email string) map[string]interface{} {
	return map[string]interface{}{
		"eventType": "SUBMISSION_CREATED",
		"data": map[string]interface{}{
			"formId":       formID,
			"submissionId": submissionID,
			"createdAt":    "2025-06-01T12:00:00Z",
			"fields": map[string]interface{}{
				"email":     email,
				"Instagram": "@creator",
			},
		},
	}
}

func TestWebhookCreatesApplication(t *testing.T) {
	env := newTestEnv(t, "http://tally.invalid")

	brief := model.Brief{TallyFormID: "form-1", Title: "Campaign", Status: model.BriefStatusLive}
	require.NoError(t, env.store.CreateBrief(&brief))

	rec := env.request(t, http.MethodPost, "/api/webhook/tally", "", webhookPayloadFor("form-1", "sub-1", "a@b.c"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["received"])

	var app model.Application
	require.NoError(t, env.db.Where("tally_submission_id = ?", "sub-1").First(&app).Error)
	require.Equal(t, brief.ID, app.BriefID)
	require.Equal(t, "a@b.c", app.Email)
	require.Equal(t, "@creator", app.Instagram)
	require.Equal(t, model.ApplicationStatusSubmitted, app.Status)
}

func TestWebhookDuplicateDeliveryIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "http://tally.invalid")

	brief := model.Brief{TallyFormID: "form-1", Title: "Campaign", Status: model.BriefStatusLive}
	require.NoError(t, env.store.CreateBrief(&brief))

	payload := webhookPayloadFor("form-1", "sub-1", "a@b.c")
	for i := 0; i < 2; i++ {
		rec := env.request(t, http.MethodPost, "/api/webhook/tally", "", payload)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, true, decodeBody(t, rec)["received"])
	}

	require.EqualValues(t, 1, env.applicationCount(t))
}

func TestWebhookAfterImportIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "http://tally.invalid")

	brief := model.Brief{TallyFormID: "form-1", Title: "Campaign", Status: model.BriefStatusLive}
	require.NoError(t, env.store.CreateBrief(&brief))

	// Same submission arrives via bulk import first
	imported, err := env.store.ImportSubmissions([]model.Application{{
		BriefID:           brief.ID,
		TallySubmissionID: "sub-1",
		Email:             "a@b.c",
		Status:            model.ApplicationStatusSubmitted,
	}})
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	rec := env.request(t, http.MethodPost, "/api/webhook/tally", "", webhookPayloadFor("form-1", "sub-1", "a@b.c"))
	require.Equal(t, http.StatusOK, rec.Code)

	require.EqualValues(t, 1, env.applicationCount(t))
}

func TestWebhookUnknownFormStillAcknowledges(t *testing.T) {
	env := newTestEnv(t, "http://tally.invalid")

	rec := env.request(t, http.MethodPost, "/api/webhook/tally", "", webhookPayloadFor("no-such-form", "sub-1", "a@b.c"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["received"])
	require.EqualValues(t, 0, env.applicationCount(t))
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	env := newTestEnv(t, "http://tally.invalid")

	brief := model.Brief{TallyFormID: "form-1", Title: "Campaign", Status: model.BriefStatusLive}
	require.NoError(t, env.store.CreateBrief(&brief))

	payload := webhookPayloadFor("form-1", "sub-1", "a@b.c")
	payload["eventType"] = "FORM_UPDATED"

	rec := env.request(t, http.MethodPost, "/api/webhook/tally", "", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["received"])
	require.EqualValues(t, 0, env.applicationCount(t))
}
