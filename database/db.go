package database

import (
	"io/fs"
	"log"
	"os"
	"path"
	"strings"

	"github.com/eventops/credenza/config"
	"github.com/eventops/credenza/database/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultUsername = "admin"
	// bcrypt hash of "admin"; replaced on first login change
	defaultPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

func initModels(db *gorm.DB) error {
	models := []any{
		&model.Identity{},
		&model.Role{},
		&model.EventGrant{},
		&model.Event{},
		&model.Subevent{},
		&model.Campaign{},
		&model.EntryType{},
		&model.Contact{},
		&model.Enrollment{},
		&model.FormField{},
		&model.FormResponse{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initRoles seeds the distinguished roles so the unrestricted role is an
// explicit, auditable row rather than a magic string that may not exist.
func initRoles(db *gorm.DB) error {
	for _, name := range []string{model.SuperAdminRole, "OPERATOR"} {
		var count int64
		if err := db.Model(&model.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&model.Role{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func initIdentity(db *gorm.DB) error {
	empty, err := isTableEmpty(db, "identities")
	if err != nil {
		log.Printf("Error checking if identities table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}
	var superAdmin model.Role
	if err := db.Where("name = ?", model.SuperAdminRole).First(&superAdmin).Error; err != nil {
		return err
	}
	identity := &model.Identity{
		Username:     defaultUsername,
		PasswordHash: defaultPasswordHash,
		Roles:        []model.Role{superAdmin},
	}
	return db.Create(identity).Error
}

func isTableEmpty(db *gorm.DB, tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

// InitDB opens (creating if needed) the sqlite database at dbPath, runs
// migrations and seeds the default roles and admin identity. The returned
// handle is the only shared storage resource; services receive it through
// their constructors.
func InitDB(dbPath string) (*gorm.DB, error) {
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return nil, err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err := gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA cache_size = -64000;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA foreign_keys = ON;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, err
		}
	}

	if err := initModels(db); err != nil {
		return nil, err
	}
	if err := initRoles(db); err != nil {
		return nil, err
	}
	if err := initIdentity(db); err != nil {
		return nil, err
	}

	return db, nil
}

// CloseDB checkpoints the WAL and closes the underlying pool.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.Exec("PRAGMA wal_checkpoint;").Error; err != nil {
		log.Printf("error executing checkpoint: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// from the storage layer. Upsert paths absorb these; anywhere else they
// surface as a conflict.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
