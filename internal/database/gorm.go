package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormConfig is shared by every driver. Constraint violations surface as gorm.ErrDuplicatedKey
// and SQL statement logging is off.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}
