package service

import (
	"testing"

	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"github.com/stretchr/testify/assert"
)

func TestCreateOrUpdateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactService(db)
	service := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)

	contact, err := contacts.Upsert(ContactProfile{Email: "guest@example.com"})
	assert.NoError(t, err)

	first, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Registered, model.PaymentNone, nil)
	assert.NoError(t, err)
	assert.Equal(t, model.Registered, first.AttendanceStatus)
	assert.NotEmpty(t, first.BadgeCode)

	second, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Confirmed, model.PaymentNone, nil)
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, model.Confirmed, second.AttendanceStatus)
	assert.Equal(t, first.BadgeCode, second.BadgeCode)

	assert.EqualValues(t, 1, countRows(t, db, &model.Enrollment{}))
}

func TestCreateOrUpdateKeepsEntryTypeWhenAbsent(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactService(db)
	service := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)

	entryType := &model.EntryType{CampaignId: campaign.Id, Name: "VIP"}
	assert.NoError(t, db.Create(entryType).Error)

	contact, err := contacts.Upsert(ContactProfile{Email: "vip@example.com"})
	assert.NoError(t, err)

	first, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Registered, model.PaymentNone, &entryType.Id)
	assert.NoError(t, err)
	if assert.NotNil(t, first.EntryTypeId) {
		assert.Equal(t, entryType.Id, *first.EntryTypeId)
	}

	// nil entry type on re-registration keeps the prior value
	second, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Confirmed, model.PaymentNone, nil)
	assert.NoError(t, err)
	if assert.NotNil(t, second.EntryTypeId) {
		assert.Equal(t, entryType.Id, *second.EntryTypeId)
	}
}

func TestCreateOrUpdateRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)

	_, err := service.CreateOrUpdate(1, 1, model.AttendanceStatus("TELEPORTED"), model.PaymentNone, nil)
	assert.Error(t, err)
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestSetAttendanceStatusNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)

	err := service.SetAttendanceStatus(12345, model.Attended)
	assert.Error(t, err)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
	assert.EqualValues(t, 0, countRows(t, db, &model.Enrollment{}))
}

func TestSetAttendanceStatus(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactService(db)
	service := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)

	contact, err := contacts.Upsert(ContactProfile{Email: "walkin@example.com"})
	assert.NoError(t, err)
	enrollment, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Invited, model.PaymentNone, nil)
	assert.NoError(t, err)

	assert.NoError(t, service.SetAttendanceStatus(enrollment.Id, model.NoShow))

	reloaded, err := service.GetEnrollment(enrollment.Id)
	assert.NoError(t, err)
	assert.Equal(t, model.NoShow, reloaded.AttendanceStatus)
}

func TestCheckInIsSafeToRepeat(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactService(db)
	service := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)

	contact, err := contacts.Upsert(ContactProfile{Email: "badge@example.com"})
	assert.NoError(t, err)
	enrollment, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Confirmed, model.PaymentNone, nil)
	assert.NoError(t, err)

	// first clerk scans the badge
	checked, already, err := service.CheckIn(enrollment.BadgeCode)
	assert.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, model.Attended, checked.AttendanceStatus)

	// second clerk scans the same badge
	checked, already, err = service.CheckIn(enrollment.BadgeCode)
	assert.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, model.Attended, checked.AttendanceStatus)

	_, _, err = service.CheckIn("no-such-badge")
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}

func TestCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactService(db)
	service := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)

	statuses := []model.AttendanceStatus{
		model.Registered, model.Registered, model.Attended, model.Cancelled,
	}
	for i, status := range statuses {
		contact, err := contacts.Upsert(ContactProfile{Email: string(rune('a'+i)) + "@example.com"})
		assert.NoError(t, err)
		_, err = service.CreateOrUpdate(campaign.Id, contact.Id, status, model.PaymentNone, nil)
		assert.NoError(t, err)
	}

	counts, err := service.CountByStatus(campaign.Id)
	assert.NoError(t, err)
	assert.Len(t, counts, len(model.AttendanceStatuses))

	byStatus := map[model.AttendanceStatus]int64{}
	for _, row := range counts {
		byStatus[row.Status] = row.Count
	}
	assert.EqualValues(t, 2, byStatus[model.Registered])
	assert.EqualValues(t, 1, byStatus[model.Attended])
	assert.EqualValues(t, 1, byStatus[model.Cancelled])
	assert.EqualValues(t, 0, byStatus[model.NoShow])
}

func TestSaveFormResponses(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactService(db)
	service := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)

	single := &model.FormField{CampaignId: campaign.Id, Label: "Diet", Active: true}
	multi := &model.FormField{CampaignId: campaign.Id, Label: "Workshops", Multiple: true, Active: true}
	assert.NoError(t, db.Create(single).Error)
	assert.NoError(t, db.Create(multi).Error)

	contact, err := contacts.Upsert(ContactProfile{Email: "answers@example.com"})
	assert.NoError(t, err)
	enrollment, err := service.CreateOrUpdate(campaign.Id, contact.Id, model.Registered, model.PaymentNone, nil)
	assert.NoError(t, err)

	err = service.SaveFormResponses(enrollment.Id, []AnswerInput{
		{FieldId: single.Id, Value: " vegetarian "},
		{FieldId: multi.Id, Values: []string{"go", "sql"}},
	})
	assert.NoError(t, err)

	responses, err := service.GetFormResponses(enrollment.Id)
	assert.NoError(t, err)
	assert.Len(t, responses, 2)

	scalar, _ := DecodeResponseValue(responses[0].Value)
	assert.Equal(t, "vegetarian", scalar)
	_, values := DecodeResponseValue(responses[1].Value)
	assert.Equal(t, []string{"go", "sql"}, values)

	// re-answering upserts, and empty answers never shadow stored ones
	err = service.SaveFormResponses(enrollment.Id, []AnswerInput{
		{FieldId: single.Id, Value: "vegan"},
		{FieldId: multi.Id, Values: []string{"  "}},
	})
	assert.NoError(t, err)

	responses, err = service.GetFormResponses(enrollment.Id)
	assert.NoError(t, err)
	assert.Len(t, responses, 2)
	scalar, _ = DecodeResponseValue(responses[0].Value)
	assert.Equal(t, "vegan", scalar)
	_, values = DecodeResponseValue(responses[1].Value)
	assert.Equal(t, []string{"go", "sql"}, values)
}
