package service

import (
	"fmt"
	"testing"

	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newImportFixture(t *testing.T) (*BulkImportService, *model.Campaign, *gormFixture) {
	t.Helper()
	db := setupTestDB(t)
	campaigns := NewCampaignService(db)
	contacts := NewContactService(db)
	enrollments := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)
	service := NewBulkImportService(db, campaigns, contacts, enrollments, 5000)
	return service, campaign, &gormFixture{db: db, contacts: contacts, enrollments: enrollments}
}

type gormFixture struct {
	db          *gorm.DB
	contacts    *ContactService
	enrollments *EnrollmentService
}

func TestImportAppliesEveryRow(t *testing.T) {
	service, campaign, fx := newImportFixture(t)

	assert.NoError(t, fx.db.Create(&model.FormField{
		CampaignId: campaign.Id, Label: "Empresa", ContactField: "company", Active: true,
	}).Error)
	tshirt := &model.FormField{CampaignId: campaign.Id, Label: "Talla", Active: true}
	assert.NoError(t, fx.db.Create(tshirt).Error)

	rows := []map[string]string{
		{"Email": " Ana@Example.com ", "First Name": "ana", "Empresa": "Acme", "Talla": "M"},
		{"Email": "bob@example.com", "Empresa": "Initech"},
	}
	processed, err := service.Import(campaign.Id, rows)
	assert.NoError(t, err)
	assert.Equal(t, 2, processed)

	assert.EqualValues(t, 2, countRows(t, fx.db, &model.Contact{}))
	assert.EqualValues(t, 2, countRows(t, fx.db, &model.Enrollment{}))

	ana, err := fx.contacts.FindByEmail("ana@example.com")
	assert.NoError(t, err)
	if assert.NotNil(t, ana) {
		assert.Equal(t, "Acme", ana.Company)
	}

	enrollment, err := fx.enrollments.FindByCampaignAndContact(campaign.Id, ana.Id)
	assert.NoError(t, err)
	if assert.NotNil(t, enrollment) {
		assert.Equal(t, model.Registered, enrollment.AttendanceStatus)
	}

	responses, err := fx.enrollments.GetFormResponses(enrollment.Id)
	assert.NoError(t, err)
	if assert.Len(t, responses, 1) {
		assert.Equal(t, tshirt.Id, responses[0].FieldId)
		value, _ := DecodeResponseValue(responses[0].Value)
		assert.Equal(t, "M", value)
	}
}

func TestImportRollsBackOnBadRow(t *testing.T) {
	service, campaign, fx := newImportFixture(t)

	rows := make([]map[string]string, 0, 11)
	for i := 0; i < 10; i++ {
		rows = append(rows, map[string]string{
			"email": fmt.Sprintf("guest%d@example.com", i),
		})
	}
	rows = append(rows, map[string]string{"first_name": "Nameless"})

	processed, err := service.Import(campaign.Id, rows)
	assert.Error(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, common.KindValidation, common.KindOf(err))
	// 10 good rows then the bad one: header row 1, data starts at 2
	assert.Equal(t, 12, common.RowOf(err))

	// nothing from the batch survives the rollback
	assert.EqualValues(t, 0, countRows(t, fx.db, &model.Contact{}))
	assert.EqualValues(t, 0, countRows(t, fx.db, &model.Enrollment{}))
	assert.EqualValues(t, 0, countRows(t, fx.db, &model.FormResponse{}))
}

func TestImportRerunReusesExistingRows(t *testing.T) {
	service, campaign, fx := newImportFixture(t)

	rows := []map[string]string{
		{"email": "repeat@example.com", "first_name": "Rita"},
	}
	_, err := service.Import(campaign.Id, rows)
	assert.NoError(t, err)

	contact, err := fx.contacts.FindByEmail("repeat@example.com")
	assert.NoError(t, err)
	enrollment, err := fx.enrollments.FindByCampaignAndContact(campaign.Id, contact.Id)
	assert.NoError(t, err)
	assert.NoError(t, fx.enrollments.SetAttendanceStatus(enrollment.Id, model.Confirmed))

	// re-running the same file never duplicates or resets anything
	_, err = service.Import(campaign.Id, rows)
	assert.NoError(t, err)

	assert.EqualValues(t, 1, countRows(t, fx.db, &model.Contact{}))
	assert.EqualValues(t, 1, countRows(t, fx.db, &model.Enrollment{}))

	reloaded, err := fx.enrollments.GetEnrollment(enrollment.Id)
	assert.NoError(t, err)
	assert.Equal(t, model.Confirmed, reloaded.AttendanceStatus)
}

func TestImportValidatesBatch(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignService(db)
	contacts := NewContactService(db)
	enrollments := NewEnrollmentService(db)
	campaign := createTestCampaign(t, db, nil)
	service := NewBulkImportService(db, campaigns, contacts, enrollments, 2)

	_, err := service.Import(campaign.Id, nil)
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	tooMany := []map[string]string{
		{"email": "a@example.com"}, {"email": "b@example.com"}, {"email": "c@example.com"},
	}
	_, err = service.Import(campaign.Id, tooMany)
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = service.Import(999, []map[string]string{{"email": "a@example.com"}})
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}

func TestImportSchemaEmailAlias(t *testing.T) {
	service, campaign, fx := newImportFixture(t)

	assert.NoError(t, fx.db.Create(&model.FormField{
		CampaignId: campaign.Id, Label: "Correo", ContactField: "email", Active: true,
	}).Error)

	_, err := service.Import(campaign.Id, []map[string]string{
		{"Correo": "alias@example.com"},
	})
	assert.NoError(t, err)

	contact, err := fx.contacts.FindByEmail("alias@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, contact)
}
