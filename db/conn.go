// Package db opens the gorm connection and keeps the schema up to date
package db

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bitwise74/course-api/model"
	"bitwise74/course-api/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the application owns, in migration order.
var Models = []any{
	model.User{},
	model.VerificationCode{},
	model.SessionToken{},
	model.Course{},
	model.Lesson{},
	model.Question{},
	model.Enrollment{},
	model.VideoProgress{},
	model.QuizAttempt{},
}

// New opens a database with the given driver ("sqlite" or "postgres")
// and migrates all tables.
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() && !strings.Contains(dsn, "mode=memory") {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}

		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
