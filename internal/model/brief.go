package model

import "time"

// Brief statuses set by admin actions. The column is free text; these are the
// values the dashboard uses.
const (
	BriefStatusLive    = "live"
	BriefStatusExpired = "expired"
)

// Brief represents a content-campaign opportunity tied one-to-one with a
// Tally form. TallyFormID is unique: at most one brief per form.
type Brief struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TallyFormID   string    `json:"tally_form_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	TallyFormName string    `json:"tally_form_name" gorm:"type:varchar(255)"`
	Title         string    `json:"title" gorm:"type:varchar(255);not null"`
	Location      string    `json:"location" gorm:"type:varchar(255)"`
	Tier          string    `json:"tier" gorm:"type:varchar(50)"`
	Requirements  string    `json:"requirements" gorm:"type:text"`
	Dates         string    `json:"dates" gorm:"type:varchar(255)"`
	Status        string    `json:"status" gorm:"type:varchar(50);default:live"`
	CreatedAt     time.Time `json:"created_at"`
}

// BriefWithCount is the read shape for the admin dashboard listing
type BriefWithCount struct {
	Brief
	ApplicationCount int64 `json:"application_count"`
}
