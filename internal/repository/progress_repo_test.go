package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
)

func seedProgressFixture(t *testing.T, db *gorm.DB) (models.StudentSession, models.SessionTask) {
	t.Helper()

	class := models.ClassGroup{Name: "7A"}
	require.NoError(t, db.Create(&class).Error)

	student := models.Student{FullName: "Alex Kim", ClassGroupID: class.ID, PINHash: "x"}
	require.NoError(t, db.Create(&student).Error)

	session := models.ExamSession{Title: "Practice", Status: models.ExamSessionStatusRunning}
	require.NoError(t, db.Create(&session).Error)

	task := models.SessionTask{ExamSessionID: session.ID, Position: 1, Title: "Sum", Statement: "sum"}
	require.NoError(t, db.Create(&task).Error)

	now := time.Now()
	studentSession := models.StudentSession{StudentID: student.ID, ExamSessionID: session.ID, StartedAt: &now}
	require.NoError(t, db.Create(&studentSession).Error)

	return studentSession, task
}

func TestProgressGetOrCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	studentSession, task := seedProgressFixture(t, db)
	repo := NewProgressRepository(db)

	first, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusNotStarted, first.Status)
	require.True(t, first.LockedAfterSolve)

	second, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.TaskProgress{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWithLockRunsAgainstFreshState(t *testing.T) {
	db := newTestDB(t)
	studentSession, task := seedProgressFixture(t, db)
	repo := NewProgressRepository(db)

	progress, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)

	// Mutate the row behind the caller's back; the callback must observe it.
	require.NoError(t, db.Model(&models.TaskProgress{}).Where("id = ?", progress.ID).
		Update("attempts_total", 4).Error)

	now := time.Now()
	err = repo.WithLock(context.Background(), progress.ID, func(tx ProgressTx) error {
		p := tx.Progress()
		require.Equal(t, uint(4), p.AttemptsTotal)
		p.RegisterAttempt(now, models.HashCode("print(1)"))
		return tx.Save()
	})
	require.NoError(t, err)

	reloaded, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, uint(5), reloaded.AttemptsTotal)
	require.NotNil(t, reloaded.LastSubmitAt)
}

func TestWithLockRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	studentSession, task := seedProgressFixture(t, db)
	repo := NewProgressRepository(db)

	progress, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)

	err = repo.WithLock(context.Background(), progress.ID, func(tx ProgressTx) error {
		p := tx.Progress()
		p.RegisterAttempt(time.Now(), models.HashCode("print(1)"))
		if saveErr := tx.Save(); saveErr != nil {
			return saveErr
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	reloaded, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)
	require.Zero(t, reloaded.AttemptsTotal)
}

func TestSubmissionHistoryOrdering(t *testing.T) {
	db := newTestDB(t)
	studentSession, task := seedProgressFixture(t, db)
	repo := NewProgressRepository(db)

	progress, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		err := repo.WithLock(context.Background(), progress.ID, func(tx ProgressTx) error {
			return tx.CreateSubmission(&models.Submission{
				TaskProgressID: progress.ID,
				AttemptNo:      uint(i),
				Code:           "print(1)",
				Verdict:        models.VerdictWrongAnswer,
				TotalTests:     2,
			})
		})
		require.NoError(t, err)
	}

	last, err := repo.LastSubmission(context.Background(), progress.ID)
	require.NoError(t, err)
	require.Equal(t, uint(5), last.AttemptNo)

	recent, err := repo.ListRecentSubmissions(context.Background(), progress.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	// Oldest of the window first, newest last.
	require.Equal(t, uint(3), recent[0].AttemptNo)
	require.Equal(t, uint(5), recent[2].AttemptNo)
}

func TestLastSubmissionNilWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	studentSession, task := seedProgressFixture(t, db)
	repo := NewProgressRepository(db)

	progress, err := repo.GetOrCreate(context.Background(), studentSession.ID, task.ID)
	require.NoError(t, err)

	last, err := repo.LastSubmission(context.Background(), progress.ID)
	require.NoError(t, err)
	require.Nil(t, last)
}
