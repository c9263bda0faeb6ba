package service

import (
	"testing"

	"github.com/eventops/credenza/database/model"

	"github.com/stretchr/testify/assert"
)

func TestUpsertDedupesByNormalizedEmail(t *testing.T) {
	db := setupTestDB(t)
	service := NewContactService(db)

	variants := []string{
		"Ana@Example.com",
		"ana@example.com ",
		"  ANA@EXAMPLE.COM",
		"ana@example.com",
	}
	for _, email := range variants {
		_, err := service.Upsert(ContactProfile{Email: email, FirstName: "ana"})
		assert.NoError(t, err)
	}

	assert.EqualValues(t, 1, countRows(t, db, &model.Contact{}))

	contact, err := service.FindByEmail("ANA@example.COM ")
	assert.NoError(t, err)
	if assert.NotNil(t, contact) {
		assert.Equal(t, "ana@example.com", contact.Email)
		assert.Equal(t, "Ana", contact.FirstName)
	}
}

func TestUpsertMergesOnlyNonEmptyFields(t *testing.T) {
	db := setupTestDB(t)
	service := NewContactService(db)

	first, err := service.Upsert(ContactProfile{
		Email:     "jose@example.com",
		FirstName: "jose",
		Company:   "acme events",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Jose", first.FirstName)
	assert.Equal(t, "Acme Events", first.Company)

	// later sighting without a company must not clear the stored one
	second, err := service.Upsert(ContactProfile{
		Email: "jose@example.com",
		Phone: "+56 9 1234 5678",
	})
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "Jose", second.FirstName)
	assert.Equal(t, "Acme Events", second.Company)
	assert.Equal(t, "+56 9 1234 5678", second.Phone)
}

func TestUpsertRequiresEmail(t *testing.T) {
	db := setupTestDB(t)
	service := NewContactService(db)

	_, err := service.Upsert(ContactProfile{FirstName: "nameless"})
	assert.Error(t, err)
	assert.EqualValues(t, 0, countRows(t, db, &model.Contact{}))
}

func TestFindByEmailMissing(t *testing.T) {
	db := setupTestDB(t)
	service := NewContactService(db)

	contact, err := service.FindByEmail("nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, contact)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	profile := ContactProfile{
		Email:      "  Maria.Paz@Example.COM ",
		FirstName:  "maria paz",
		LastName:   "GONZALEZ",
		Company:    " viña del mar eventos ",
		Profession: "ingeniera civil",
		Phone:      " 987654321 ",
	}

	profile.Normalize()
	once := profile
	profile.Normalize()

	assert.Equal(t, once, profile)
	assert.Equal(t, "maria.paz@example.com", profile.Email)
	assert.Equal(t, "Maria Paz", profile.FirstName)
	assert.Equal(t, "Gonzalez", profile.LastName)
	assert.Equal(t, "Viña Del Mar Eventos", profile.Company)
	assert.Equal(t, "Ingeniera Civil", profile.Profession)
	assert.Equal(t, "987654321", profile.Phone)
}

func TestContactFieldRouting(t *testing.T) {
	assert.True(t, IsContactField("first_name"))
	assert.True(t, IsContactField(" Email "))
	assert.False(t, IsContactField("favorite_color"))

	var profile ContactProfile
	assert.True(t, profile.Set("commune", "providencia"))
	assert.False(t, profile.Set("favorite_color", "blue"))
	assert.Equal(t, "providencia", profile.Commune)
}
