package store

import "github.com/MUOBSocial/MUOB-creators/internal/model"

// Stats holds the dashboard aggregate counts
type Stats struct {
	TotalBriefs              int64 `json:"total_briefs"`
	LiveBriefs               int64 `json:"live_briefs"`
	ExpiredBriefs            int64 `json:"expired_briefs"`
	TotalApplications        int64 `json:"total_applications"`
	PendingApplications      int64 `json:"pending_applications"`
	AcceptedApplications     int64 `json:"accepted_applications"`
	UnsuccessfulApplications int64 `json:"unsuccessful_applications"`
}

// Stats aggregates brief counts by status and application counts by status
func (s *Store) Stats() (*Stats, error) {
	var stats Stats

	briefCounts := []struct {
		status string
		dest   *int64
	}{
		{"", &stats.TotalBriefs},
		{model.BriefStatusLive, &stats.LiveBriefs},
		{model.BriefStatusExpired, &stats.ExpiredBriefs},
	}
	for _, bc := range briefCounts {
		query := s.db.Model(&model.Brief{})
		if bc.status != "" {
			query = query.Where("status = ?", bc.status)
		}
		if err := query.Count(bc.dest).Error; err != nil {
			return nil, err
		}
	}

	appCounts := []struct {
		status string
		dest   *int64
	}{
		{"", &stats.TotalApplications},
		{model.ApplicationStatusSubmitted, &stats.PendingApplications},
		{model.ApplicationStatusAccepted, &stats.AcceptedApplications},
		{model.ApplicationStatusUnsuccessful, &stats.UnsuccessfulApplications},
	}
	for _, ac := range appCounts {
		query := s.db.Model(&model.Application{})
		if ac.status != "" {
			query = query.Where("status = ?", ac.status)
		}
		if err := query.Count(ac.dest).Error; err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
