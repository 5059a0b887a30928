package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
)

func seedSessionWithClass(t *testing.T, db *gorm.DB, status string, startsAt, endsAt *time.Time) (models.ClassGroup, models.ExamSession) {
	t.Helper()

	class := models.ClassGroup{Name: "7A"}
	require.NoError(t, db.Create(&class).Error)

	session := models.ExamSession{
		Title:    "Week 3 practice",
		Status:   status,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Classes:  []models.ClassGroup{class},
	}
	require.NoError(t, db.Create(&session).Error)

	return class, session
}

func TestActiveForClassReturnsRunningSessionInWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	starts := now.Add(-time.Hour)
	ends := now.Add(time.Hour)
	class, session := seedSessionWithClass(t, db, models.ExamSessionStatusRunning, &starts, &ends)

	repo := NewExamSessionRepository(db)
	found, err := repo.ActiveForClass(context.Background(), class.ID, now)
	require.NoError(t, err)
	require.Equal(t, session.ID, found.ID)
}

func TestActiveForClassIgnoresDraftAndClosedSessions(t *testing.T) {
	db := newTestDB(t)
	class, _ := seedSessionWithClass(t, db, models.ExamSessionStatusDraft, nil, nil)

	repo := NewExamSessionRepository(db)
	_, err := repo.ActiveForClass(context.Background(), class.ID, time.Now())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestActiveForClassRespectsTimeWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	ends := now.Add(-time.Minute)
	starts := now.Add(-2 * time.Hour)
	class, _ := seedSessionWithClass(t, db, models.ExamSessionStatusRunning, &starts, &ends)

	repo := NewExamSessionRepository(db)
	_, err := repo.ActiveForClass(context.Background(), class.ID, now)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestActiveForClassIsScopedToClass(t *testing.T) {
	db := newTestDB(t)
	_, _ = seedSessionWithClass(t, db, models.ExamSessionStatusRunning, nil, nil)

	other := models.ClassGroup{Name: "8B"}
	require.NoError(t, db.Create(&other).Error)

	repo := NewExamSessionRepository(db)
	_, err := repo.ActiveForClass(context.Background(), other.ID, time.Now())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestGetTaskScopedToSession(t *testing.T) {
	db := newTestDB(t)
	_, session := seedSessionWithClass(t, db, models.ExamSessionStatusRunning, nil, nil)

	task := models.SessionTask{ExamSessionID: session.ID, Position: 1, Title: "Sum", Statement: "sum"}
	require.NoError(t, db.Create(&task).Error)

	repo := NewExamSessionRepository(db)
	found, err := repo.GetTask(context.Background(), task.ID, session.ID)
	require.NoError(t, err)
	require.Equal(t, "Sum", found.Title)

	_, err = repo.GetTask(context.Background(), task.ID, session.ID+1)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListVisibleTestCasesFiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	_, session := seedSessionWithClass(t, db, models.ExamSessionStatusRunning, nil, nil)

	task := models.SessionTask{ExamSessionID: session.ID, Position: 1, Title: "Sum", Statement: "sum"}
	require.NoError(t, db.Create(&task).Error)

	require.NoError(t, db.Create(&models.TaskTestCase{SessionTaskID: task.ID, Ordinal: 2, Stdin: "b", IsVisible: true}).Error)
	require.NoError(t, db.Create(&models.TaskTestCase{SessionTaskID: task.ID, Ordinal: 1, Stdin: "a", IsVisible: true}).Error)
	require.NoError(t, db.Create(&models.TaskTestCase{SessionTaskID: task.ID, Ordinal: 3, Stdin: "hidden"}).Error)

	repo := NewExamSessionRepository(db)
	visible, err := repo.ListVisibleTestCases(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	require.Equal(t, "a", visible[0].Stdin)
	require.Equal(t, "b", visible[1].Stdin)

	all, err := repo.ListTestCases(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
