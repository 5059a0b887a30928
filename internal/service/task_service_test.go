package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kodelab-api/internal/models"
)

func taskFixture() (*stubSessionRepo, *stubProgressRepo, TaskService) {
	sessionRepo := &stubSessionRepo{
		session: models.ExamSession{ID: 1, Status: models.ExamSessionStatusRunning},
		task:    models.SessionTask{ID: 7, ExamSessionID: 1, Position: 1, Title: "Sum", Statement: "Read two integers and print their sum."},
		visible: []models.TaskTestCase{
			{ID: 1, SessionTaskID: 7, Ordinal: 1, Stdin: "1 2", ExpectedStdout: "3\n", IsVisible: true},
		},
	}
	progressRepo := &stubProgressRepo{}
	svc := NewTaskService(sessionRepo, &stubStudentSessionRepo{}, progressRepo, nil, zerolog.Nop())
	return sessionRepo, progressRepo, svc
}

func TestOpenTaskStartsProgressOnce(t *testing.T) {
	_, progressRepo, svc := taskFixture()

	resp, err := svc.OpenTask(context.Background(), Identity{StudentID: 1, ClassGroupID: 1}, 7)
	require.NoError(t, err)
	require.False(t, resp.Locked)
	require.Equal(t, "Sum", resp.Task.Title)
	require.Equal(t, models.ProgressStatusInProgress, resp.Progress.Status)
	require.Len(t, resp.VisibleTestCases, 1)
	require.Equal(t, "1 2", resp.VisibleTestCases[0].Stdin)

	require.NotNil(t, progressRepo.progress.OpenedAt)
	opened := *progressRepo.progress.OpenedAt

	// Reopening does not move the opened timestamp or touch the row again.
	_, err = svc.OpenTask(context.Background(), Identity{StudentID: 1, ClassGroupID: 1}, 7)
	require.NoError(t, err)
	require.Equal(t, opened, *progressRepo.progress.OpenedAt)
	require.Equal(t, 1, progressRepo.updates)
}

func TestOpenTaskWithholdsSolvedStatement(t *testing.T) {
	_, progressRepo, svc := taskFixture()
	progressRepo.progress = models.TaskProgress{
		ID: 1, StudentSessionID: 1, SessionTaskID: 7,
		Status: models.ProgressStatusSolved, LockedAfterSolve: true, AttemptsTotal: 3,
	}

	resp, err := svc.OpenTask(context.Background(), Identity{StudentID: 1, ClassGroupID: 1}, 7)
	require.NoError(t, err)
	require.True(t, resp.Locked)
	require.Nil(t, resp.Task)
	require.Empty(t, resp.VisibleTestCases)
	require.Equal(t, models.ProgressStatusSolved, resp.Progress.Status)
}

func TestOpenTaskUnknownTask(t *testing.T) {
	_, _, svc := taskFixture()

	_, err := svc.OpenTask(context.Background(), Identity{StudentID: 1, ClassGroupID: 1}, 99)
	require.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestOpenTaskWithoutActiveSession(t *testing.T) {
	sessionRepo, _, svc := taskFixture()
	sessionRepo.session = models.ExamSession{}

	_, err := svc.OpenTask(context.Background(), Identity{StudentID: 1, ClassGroupID: 1}, 7)
	require.True(t, errors.Is(err, ErrSessionInactive))
}
