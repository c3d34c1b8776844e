package store

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MUOBSocial/MUOB-creators/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.Admin{}, &model.Brief{}, &model.Application{}))
	return New(db)
}

func newBrief(formID, title, tier, status string) *model.Brief {
	return &model.Brief{
		TallyFormID: formID,
		Title:       title,
		Tier:        tier,
		Status:      status,
	}
}

func newApplication(briefID uint, submissionID, email, status string, submittedAt time.Time) *model.Application {
	return &model.Application{
		BriefID:           briefID,
		TallySubmissionID: submissionID,
		Email:             email,
		Status:            status,
		SubmittedAt:       submittedAt,
	}
}

func TestSeedAdminIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SeedAdmin("admin", "hash-one"))
	require.NoError(t, s.SeedAdmin("admin", "hash-two"))

	admin, err := s.FindAdminByUsername("admin")
	require.NoError(t, err)
	require.Equal(t, "hash-one", admin.PasswordHash)

	var count int64
	require.NoError(t, s.db.Model(&model.Admin{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateBriefDuplicateForm(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateBrief(newBrief("form-1", "First", "gold", model.BriefStatusLive)))

	err := s.CreateBrief(newBrief("form-1", "Second", "silver", model.BriefStatusLive))
	require.ErrorIs(t, err, ErrDuplicateForm)

	var count int64
	require.NoError(t, s.db.Model(&model.Brief{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestListBriefsWithCounts(t *testing.T) {
	s := newTestStore(t)

	older := newBrief("form-1", "Older", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(older))
	require.NoError(t, s.db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	newer := newBrief("form-2", "Newer", "silver", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(newer))

	for i, sub := range []string{"sub-1", "sub-2"} {
		app := newApplication(older.ID, sub, "a@b.c", model.ApplicationStatusSubmitted, time.Now().Add(time.Duration(i)*time.Minute))
		created, err := s.InsertApplication(app)
		require.NoError(t, err)
		require.True(t, created)
	}

	briefs, err := s.ListBriefs()
	require.NoError(t, err)
	require.Len(t, briefs, 2)

	// Newest first
	require.Equal(t, "Newer", briefs[0].Title)
	require.EqualValues(t, 0, briefs[0].ApplicationCount)
	require.Equal(t, "Older", briefs[1].Title)
	require.EqualValues(t, 2, briefs[1].ApplicationCount)
}

func TestInsertApplicationIgnoresDuplicates(t *testing.T) {
	s := newTestStore(t)

	brief := newBrief("form-1", "Brief", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(brief))

	created, err := s.InsertApplication(newApplication(brief.ID, "sub-1", "a@b.c", model.ApplicationStatusSubmitted, time.Now()))
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.InsertApplication(newApplication(brief.ID, "sub-1", "other@b.c", model.ApplicationStatusSubmitted, time.Now()))
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, s.db.Model(&model.Application{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestImportSubmissionsSkipsDuplicates(t *testing.T) {
	s := newTestStore(t)

	brief := newBrief("form-1", "Brief", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(brief))

	_, err := s.InsertApplication(newApplication(brief.ID, "sub-1", "a@b.c", model.ApplicationStatusSubmitted, time.Now()))
	require.NoError(t, err)

	imported, err := s.ImportSubmissions([]model.Application{
		*newApplication(brief.ID, "sub-1", "a@b.c", model.ApplicationStatusSubmitted, time.Now()),
		*newApplication(brief.ID, "sub-2", "b@b.c", model.ApplicationStatusSubmitted, time.Now()),
		*newApplication(brief.ID, "sub-3", "c@b.c", model.ApplicationStatusSubmitted, time.Now()),
	})
	require.NoError(t, err)
	require.Equal(t, 2, imported)

	var count int64
	require.NoError(t, s.db.Model(&model.Application{}).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestListApplicationsFilterComposition(t *testing.T) {
	s := newTestStore(t)

	gold := newBrief("form-1", "Gold brief", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(gold))
	silver := newBrief("form-2", "Silver brief", "silver", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(silver))

	seed := []struct {
		briefID uint
		sub     string
		status  string
	}{
		{gold.ID, "sub-1", model.ApplicationStatusAccepted},
		{gold.ID, "sub-2", model.ApplicationStatusSubmitted},
		{silver.ID, "sub-3", model.ApplicationStatusAccepted},
	}
	for _, row := range seed {
		_, err := s.InsertApplication(newApplication(row.briefID, row.sub, "a@b.c", row.status, time.Now()))
		require.NoError(t, err)
	}

	// No filters: everything
	all, err := s.ListApplications(ApplicationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	// briefId + status, AND-combined
	filtered, err := s.ListApplications(ApplicationFilter{
		BriefID: strconv.FormatUint(uint64(gold.ID), 10),
		Status:  model.ApplicationStatusAccepted,
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "sub-1", filtered[0].TallySubmissionID)
	require.Equal(t, "Gold brief", filtered[0].BriefTitle)

	// tier filter joins through the brief
	tiered, err := s.ListApplications(ApplicationFilter{Tier: "silver"})
	require.NoError(t, err)
	require.Len(t, tiered, 1)
	require.Equal(t, "sub-3", tiered[0].TallySubmissionID)
}

func TestBulkUpdateStatusCountsOnlyExistingRows(t *testing.T) {
	s := newTestStore(t)

	brief := newBrief("form-1", "Brief", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(brief))

	app1 := newApplication(brief.ID, "sub-1", "a@b.c", model.ApplicationStatusSubmitted, time.Now())
	app2 := newApplication(brief.ID, "sub-2", "b@b.c", model.ApplicationStatusSubmitted, time.Now())
	for _, app := range []*model.Application{app1, app2} {
		_, err := s.InsertApplication(app)
		require.NoError(t, err)
	}

	updated, err := s.BulkUpdateStatus([]uint{app1.ID, app2.ID, 9999}, model.ApplicationStatusAccepted)
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)

	apps, err := s.ListApplications(ApplicationFilter{Status: model.ApplicationStatusAccepted})
	require.NoError(t, err)
	require.Len(t, apps, 2)
}

func TestUpdateApplicationStatusAndFeedback(t *testing.T) {
	s := newTestStore(t)

	brief := newBrief("form-1", "Brief", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(brief))

	app := newApplication(brief.ID, "sub-1", "a@b.c", model.ApplicationStatusSubmitted, time.Now())
	_, err := s.InsertApplication(app)
	require.NoError(t, err)

	require.NoError(t, s.UpdateApplication(app.ID, model.ApplicationStatusUnsuccessful, "not this time"))

	var got model.Application
	require.NoError(t, s.db.First(&got, app.ID).Error)
	require.Equal(t, model.ApplicationStatusUnsuccessful, got.Status)
	require.Equal(t, "not this time", got.AdminFeedback)
}

func TestApplicationsByEmailScoping(t *testing.T) {
	s := newTestStore(t)

	brief := newBrief("form-1", "Brief", "gold", model.BriefStatusLive)
	require.NoError(t, s.CreateBrief(brief))

	_, err := s.InsertApplication(newApplication(brief.ID, "sub-1", "mine@b.c", model.ApplicationStatusSubmitted, time.Now()))
	require.NoError(t, err)
	_, err = s.InsertApplication(newApplication(brief.ID, "sub-2", "theirs@b.c", model.ApplicationStatusSubmitted, time.Now()))
	require.NoError(t, err)

	apps, err := s.ApplicationsByEmail("mine@b.c")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "sub-1", apps[0].TallySubmissionID)
	require.Equal(t, "Brief", apps[0].BriefTitle)

	exists, err := s.HasApplicationsForEmail("mine@b.c")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.HasApplicationsForEmail("nobody@b.c")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStatsAggregation(t *testing.T) {
	s := newTestStore(t)

	live1 := newBrief("form-1", "Live one", "gold", model.BriefStatusLive)
	live2 := newBrief("form-2", "Live two", "gold", model.BriefStatusLive)
	expired := newBrief("form-3", "Expired", "gold", model.BriefStatusExpired)
	for _, b := range []*model.Brief{live1, live2, expired} {
		require.NoError(t, s.CreateBrief(b))
	}

	seed := []struct {
		sub    string
		status string
	}{
		{"sub-1", model.ApplicationStatusSubmitted},
		{"sub-2", model.ApplicationStatusSubmitted},
		{"sub-3", model.ApplicationStatusSubmitted},
		{"sub-4", model.ApplicationStatusAccepted},
	}
	for _, row := range seed {
		_, err := s.InsertApplication(newApplication(live1.ID, row.sub, "a@b.c", row.status, time.Now()))
		require.NoError(t, err)
	}

	stats, err := s.Stats()
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.TotalBriefs)
	require.EqualValues(t, 2, stats.LiveBriefs)
	require.EqualValues(t, 1, stats.ExpiredBriefs)
	require.EqualValues(t, 4, stats.TotalApplications)
	require.EqualValues(t, 3, stats.PendingApplications)
	require.EqualValues(t, 1, stats.AcceptedApplications)
	require.EqualValues(t, 0, stats.UnsuccessfulApplications)
}
