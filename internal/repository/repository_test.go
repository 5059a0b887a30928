package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ClassGroup{},
		&models.Student{},
		&models.ExamSession{},
		&models.SessionTask{},
		&models.TaskTestCase{},
		&models.StudentSession{},
		&models.TaskProgress{},
		&models.Submission{},
		&models.HintRecord{},
		&models.ActivityEvent{},
		&models.ActivityAggregate{},
	))

	return db
}
