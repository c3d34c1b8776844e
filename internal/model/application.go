package model

import "time"

// Application statuses. Stored as free text; the admin UI moves applications
// from submitted to accepted or unsuccessful.
const (
	ApplicationStatusSubmitted    = "submitted"
	ApplicationStatusAccepted     = "accepted"
	ApplicationStatusUnsuccessful = "unsuccessful"
)

// Application represents one creator's submission against a brief, sourced
// from a Tally form submission. TallySubmissionID is unique so that duplicate
// webhook delivery or re-import never creates a second row.
type Application struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	BriefID           uint      `json:"brief_id" gorm:"index;not null"`
	TallySubmissionID string    `json:"tally_submission_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email             string    `json:"email" gorm:"type:varchar(255);index;not null"`
	Instagram         string    `json:"instagram" gorm:"type:varchar(255)"`
	Portfolio         string    `json:"portfolio" gorm:"type:text"`
	ContentProposal   string    `json:"content_proposal" gorm:"type:text"`
	Status            string    `json:"status" gorm:"type:varchar(50);default:submitted"`
	AdminFeedback     string    `json:"admin_feedback" gorm:"type:text"`
	SubmittedAt       time.Time `json:"submitted_at"`
	RawTallyData      string    `json:"raw_tally_data,omitempty" gorm:"type:text"`
}

// ApplicationWithBrief is the read shape joining the owning brief's details
type ApplicationWithBrief struct {
	Application
	BriefTitle    string `json:"brief_title"`
	BriefLocation string `json:"brief_location"`
	BriefTier     string `json:"brief_tier"`
}
