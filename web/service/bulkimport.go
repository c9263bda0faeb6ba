package service

import (
	"fmt"
	"strings"

	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/util/common"

	"gorm.io/gorm"
)

// headerRowOffset converts a 0-based data row index into the row number
// the operator sees in the spreadsheet: one header row, then 1-based data
// rows. Data row 0 is spreadsheet row 2.
const headerRowOffset = 2

// BulkImportService runs multi-row guest-list imports as a single
// all-or-nothing transaction on top of the contact and enrollment
// services. A half-imported guest list is worse than a clean failure, so
// the first bad row rolls back the whole batch and reports its line
// number.
type BulkImportService struct {
	db                *gorm.DB
	campaignService   *CampaignService
	contactService    *ContactService
	enrollmentService *EnrollmentService
	maxRows           int
}

func NewBulkImportService(db *gorm.DB, campaigns *CampaignService, contacts *ContactService, enrollments *EnrollmentService, maxRows int) *BulkImportService {
	return &BulkImportService{
		db:                db,
		campaignService:   campaigns,
		contactService:    contacts,
		enrollmentService: enrollments,
		maxRows:           maxRows,
	}
}

// schemaLookups are built once per import from the campaign's active
// fields: header label to system contact field, and header label to
// custom field id. Labels are matched case-insensitively and trimmed.
type schemaLookups struct {
	contactFields map[string]string
	customFields  map[string]int
}

func buildLookups(fields []*model.FormField) schemaLookups {
	lookups := schemaLookups{
		contactFields: map[string]string{},
		customFields:  map[string]int{},
	}
	for _, field := range fields {
		label := normalizeHeader(field.Label)
		if field.ContactField != "" {
			lookups.contactFields[label] = field.ContactField
		}
		lookups.customFields[label] = field.Id
	}
	// the email header always routes to the contact key, schema or not
	lookups.contactFields["email"] = "email"
	return lookups
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// Import processes rows for one campaign inside a single transaction and
// returns the number of rows applied. Any failure rolls back every change
// from the batch; the returned error carries the offending spreadsheet
// row. Re-running a fixed file is safe: contacts and enrollments are
// reused, never duplicated, and an existing enrollment keeps its status.
func (s *BulkImportService) Import(campaignId int, rows []map[string]string) (int, error) {
	campaign, err := s.campaignService.GetCampaign(campaignId)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, common.NewValidation("import contains no rows")
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return 0, common.NewValidation(fmt.Sprintf("import of %d rows exceeds the limit of %d", len(rows), s.maxRows))
	}

	fields, err := s.campaignService.ListFormFields(campaign.Id)
	if err != nil {
		return 0, err
	}
	lookups := buildLookups(fields)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i, raw := range rows {
			if err := s.importRow(tx, campaign.Id, lookups, i, raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if common.KindOf(err) == common.KindUnknown {
			return 0, common.NewTransaction(err)
		}
		return 0, err
	}

	logger.Infof("imported %d rows into campaign %d", len(rows), campaignId)
	return len(rows), nil
}

// importRow applies one spreadsheet row: route headers into a contact
// patch and custom answers, upsert the contact, ensure the enrollment,
// upsert the answers. index is 0-based.
func (s *BulkImportService) importRow(tx *gorm.DB, campaignId int, lookups schemaLookups, index int, raw map[string]string) error {
	rowNumber := index + headerRowOffset

	row := make(map[string]string, len(raw))
	for header, value := range raw {
		row[normalizeHeader(header)] = strings.TrimSpace(value)
	}

	email := NormalizeEmail(row["email"])
	if email == "" {
		// the schema may label the email column differently
		for header, contactField := range lookups.contactFields {
			if contactField == "email" && row[header] != "" {
				email = NormalizeEmail(row[header])
				break
			}
		}
	}
	if email == "" {
		return common.NewRowValidation(rowNumber, "missing or empty email")
	}

	profile := ContactProfile{Email: email}
	var answers []AnswerInput
	for header, value := range row {
		if header == "email" || value == "" {
			continue
		}
		// a header matching both lookups belongs to the contact only
		if contactField, ok := lookups.contactFields[header]; ok {
			profile.Set(contactField, value)
			continue
		}
		if fieldId, ok := lookups.customFields[header]; ok {
			answers = append(answers, AnswerInput{FieldId: fieldId, Value: value})
		}
	}

	contact, err := s.contactService.upsert(tx, profile)
	if err != nil {
		return err
	}

	enrollment, err := s.enrollmentService.ensure(tx, campaignId, contact.Id, model.Registered)
	if err != nil {
		return err
	}

	return s.enrollmentService.saveFormResponses(tx, enrollment.Id, answers)
}
