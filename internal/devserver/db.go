package devserver

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Account is a registered user of the mock backend.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Login     string `gorm:"uniqueIndex;size:64"`
	Password  string
	FullName  string
	Phone     string
	Email     string
	Balance   int
	AvatarURL string
	Token     string `gorm:"index;size:64"`
	CreatedAt time.Time
}

// TherapySession is one counseling session row. Status uses the wire
// encoding: 1 good, 3 bad, 2 neutral.
type TherapySession struct {
	ID        uint `gorm:"primaryKey"`
	AccountID uint `gorm:"index"`
	Date      time.Time
	Status    int
	Open      bool
	CreatedAt time.Time
}

// MoodRecord is one mood check-in mirrored from a client.
type MoodRecord struct {
	ID        uint `gorm:"primaryKey"`
	AccountID uint `gorm:"index"`
	Mood      string
	Score     int
	Note      string
	Timestamp time.Time
	CreatedAt time.Time
}

// AllModels returns the GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&Account{},
		&TherapySession{},
		&MoodRecord{},
	}
}

// OpenSQLite opens a SQLite database at path ("" means in-memory) and
// migrates the schema.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("devserver: open sqlite %s: %w", path, err)
	}
	return db, migrate(db)
}

// OpenMySQL opens a MySQL database via DSN and migrates the schema.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("devserver: open mysql: %w", err)
	}
	return db, migrate(db)
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("devserver: auto-migrate: %w", err)
	}
	return nil
}

// SeedDemo creates the default demo account if it does not exist.
func SeedDemo(db *gorm.DB) error {
	demo := Account{
		Login:    "demo",
		Password: "demo",
		FullName: "Demo User",
		Phone:    "+7 900 000-00-00",
		Email:    "demo@example.com",
		Balance:  3,
	}
	err := db.Where(Account{Login: demo.Login}).FirstOrCreate(&demo).Error
	if err != nil {
		return fmt.Errorf("devserver: seed demo account: %w", err)
	}
	return nil
}
