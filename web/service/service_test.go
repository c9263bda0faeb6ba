package service

import (
	"path/filepath"
	"testing"

	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "credenza-test.db")
	db, err := database.InitDB(dbPath)
	if err != nil {
		t.Fatalf("init test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.CloseDB(db)
	})
	return db
}

func createTestCampaign(t *testing.T, db *gorm.DB, opts func(*model.Campaign)) *model.Campaign {
	t.Helper()
	event := &model.Event{Name: "Expo", Active: true}
	assert.NoError(t, db.Create(event).Error)

	campaign := &model.Campaign{
		EventId:              event.Id,
		Name:                 "General Admission",
		Slug:                 "general-admission",
		RequiresRegistration: true,
		Active:               true,
	}
	if opts != nil {
		opts(campaign)
	}
	assert.NoError(t, db.Create(campaign).Error)
	return campaign
}

func createTestIdentity(t *testing.T, db *gorm.DB, username string) *model.Identity {
	t.Helper()
	identity := &model.Identity{Username: username, PasswordHash: "x"}
	assert.NoError(t, db.Create(identity).Error)
	return identity
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	assert.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
