package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MUOBSocial/MUOB-creators/internal/model"
)

// ErrDuplicateForm is returned when a brief already exists for a Tally form
var ErrDuplicateForm = errors.New("form already connected to a brief")

// Store wraps all database operations on admins, briefs and applications.
// It owns all entity state; there is no in-process caching.
type Store struct {
	db *gorm.DB
}

// New creates a store over an open gorm handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SeedAdmin inserts the default operator account if it does not exist yet
func (s *Store) SeedAdmin(username, passwordHash string) error {
	admin := model.Admin{
		Username:     username,
		PasswordHash: passwordHash,
	}
	return s.db.Where("username = ?", username).FirstOrCreate(&admin).Error
}

// FindAdminByUsername looks up an operator account by username
func (s *Store) FindAdminByUsername(username string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateBrief inserts a brief. A second brief for the same Tally form fails
// with ErrDuplicateForm.
func (s *Store) CreateBrief(brief *model.Brief) error {
	if err := s.db.Create(brief).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateForm
		}
		return err
	}
	return nil
}

// ListBriefs returns all briefs with their application counts, newest first
func (s *Store) ListBriefs() ([]model.BriefWithCount, error) {
	briefs := make([]model.BriefWithCount, 0)
	err := s.db.Model(&model.Brief{}).
		Select("briefs.*, COUNT(applications.id) AS application_count").
		Joins("LEFT JOIN applications ON applications.brief_id = briefs.id").
		Group("briefs.id").
		Order("briefs.created_at DESC").
		Scan(&briefs).Error
	return briefs, err
}

// UpdateBriefStatus updates only the status column of a brief
func (s *Store) UpdateBriefStatus(id uint, status string) error {
	return s.db.Model(&model.Brief{}).Where("id = ?", id).
		Update("status", status).Error
}

// BriefByFormID finds the brief connected to a Tally form, if any
func (s *Store) BriefByFormID(formID string) (*model.Brief, error) {
	var brief model.Brief
	if err := s.db.Where("tally_form_id = ?", formID).First(&brief).Error; err != nil {
		return nil, err
	}
	return &brief, nil
}

// ConnectedFormIDs returns the set of Tally form IDs already bound to a brief
func (s *Store) ConnectedFormIDs() (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&model.Brief{}).Pluck("tally_form_id", &ids).Error; err != nil {
		return nil, err
	}
	connected := make(map[string]bool, len(ids))
	for _, id := range ids {
		connected[id] = true
	}
	return connected, nil
}

// InsertApplication inserts an application, silently ignoring duplicates of
// the same Tally submission. Reports whether a row was actually created.
func (s *Store) InsertApplication(app *model.Application) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tally_submission_id"}},
		DoNothing: true,
	}).Create(app)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ImportSubmissions inserts a batch of applications for a brief inside one
// transaction and returns how many rows were created. Duplicate submissions
// are skipped, not errors.
func (s *Store) ImportSubmissions(apps []model.Application) (int, error) {
	imported := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range apps {
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tally_submission_id"}},
				DoNothing: true,
			}).Create(&apps[i])
			if result.Error != nil {
				return result.Error
			}
			imported += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

// ApplicationFilter holds the optional, AND-combined listing predicates
type ApplicationFilter struct {
	BriefID string
	Status  string
	Tier    string
}

// ListApplications returns applications joined with their brief, newest
// submission first, constrained by whichever filters are set.
func (s *Store) ListApplications(filter ApplicationFilter) ([]model.ApplicationWithBrief, error) {
	query := s.db.Model(&model.Application{}).
		Select("applications.*, briefs.title AS brief_title, briefs.location AS brief_location, briefs.tier AS brief_tier").
		Joins("JOIN briefs ON briefs.id = applications.brief_id")

	if filter.BriefID != "" {
		query = query.Where("applications.brief_id = ?", filter.BriefID)
	}
	if filter.Status != "" {
		query = query.Where("applications.status = ?", filter.Status)
	}
	if filter.Tier != "" {
		query = query.Where("briefs.tier = ?", filter.Tier)
	}

	apps := make([]model.ApplicationWithBrief, 0)
	err := query.Order("applications.submitted_at DESC").Scan(&apps).Error
	return apps, err
}

// UpdateApplication updates status and admin feedback together
func (s *Store) UpdateApplication(id uint, status, feedback string) error {
	return s.db.Model(&model.Application{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"admin_feedback": feedback,
		}).Error
}

// BulkUpdateStatus sets the status on all matching applications and returns
// how many rows actually changed. Absent IDs are simply not counted.
func (s *Store) BulkUpdateStatus(ids []uint, status string) (int64, error) {
	result := s.db.Model(&model.Application{}).Where("id IN ?", ids).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// ApplicationsByEmail returns a creator's applications joined with their
// brief's title, location and tier, newest submission first.
func (s *Store) ApplicationsByEmail(email string) ([]model.ApplicationWithBrief, error) {
	apps := make([]model.ApplicationWithBrief, 0)
	err := s.db.Model(&model.Application{}).
		Select("applications.*, briefs.title AS brief_title, briefs.location AS brief_location, briefs.tier AS brief_tier").
		Joins("JOIN briefs ON briefs.id = applications.brief_id").
		Where("applications.email = ?", email).
		Order("applications.submitted_at DESC").
		Scan(&apps).Error
	return apps, err
}

// HasApplicationsForEmail reports whether any application exists for an email
func (s *Store) HasApplicationsForEmail(email string) (bool, error) {
	var count int64
	err := s.db.Model(&model.Application{}).Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
