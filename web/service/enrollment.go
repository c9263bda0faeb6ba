package service

import (
	"strings"

	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerInput is one custom-field answer supplied by a registration path.
// Values is set for multi-select fields, Value otherwise.
type AnswerInput struct {
	FieldId int      `json:"fieldId"`
	Value   string   `json:"value"`
	Values  []string `json:"values"`
}

// empty reports whether the answer carries nothing worth persisting.
func (a AnswerInput) empty() bool {
	if len(a.Values) > 0 {
		for _, v := range a.Values {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(a.Value) == ""
}

// serialize renders the stored form: a JSON array for multi-select
// answers, a trimmed scalar otherwise. DecodeResponseValue is the inverse.
func (a AnswerInput) serialize() (string, error) {
	if len(a.Values) > 0 {
		trimmed := make([]string, 0, len(a.Values))
		for _, v := range a.Values {
			if s := strings.TrimSpace(v); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		raw, err := json.Marshal(trimmed)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return strings.TrimSpace(a.Value), nil
}

// DecodeResponseValue splits a stored response back into scalar or list
// form, matching what serialize wrote.
func DecodeResponseValue(stored string) (string, []string) {
	if strings.HasPrefix(stored, "[") {
		var values []string
		if err := json.Unmarshal([]byte(stored), &values); err == nil {
			return "", values
		}
	}
	return stored, nil
}

// EnrollmentService owns the (campaign, contact) enrollment record and the
// attendance state machine. CreateOrUpdate is the idempotency boundary
// every registration path goes through.
type EnrollmentService struct {
	db *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// FindByCampaignAndContact returns the enrollment for the pair, or
// (nil, nil) when none exists.
func (s *EnrollmentService) FindByCampaignAndContact(campaignId, contactId int) (*model.Enrollment, error) {
	return s.findByPair(s.db, campaignId, contactId)
}

func (s *EnrollmentService) findByPair(tx *gorm.DB, campaignId, contactId int) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{}
	err := tx.Model(model.Enrollment{}).
		Where("campaign_id = ? AND contact_id = ?", campaignId, contactId).
		First(enrollment).
		Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// CreateOrUpdate inserts the enrollment for (campaign, contact) or updates
// the status fields of the existing one. The entry type is only
// overwritten when a new value is supplied. Calling it twice with the same
// pair never produces two rows: the unique index plus ON CONFLICT carries
// the guarantee, not an existence check.
func (s *EnrollmentService) CreateOrUpdate(campaignId, contactId int, status model.AttendanceStatus, payment model.PaymentStatus, entryTypeId *int) (*model.Enrollment, error) {
	return s.createOrUpdate(s.db, campaignId, contactId, status, payment, entryTypeId)
}

func (s *EnrollmentService) createOrUpdate(tx *gorm.DB, campaignId, contactId int, status model.AttendanceStatus, payment model.PaymentStatus, entryTypeId *int) (*model.Enrollment, error) {
	if !status.Valid() {
		return nil, common.NewValidation("unknown attendance status: " + string(status))
	}

	enrollment := &model.Enrollment{
		CampaignId:       campaignId,
		ContactId:        contactId,
		AttendanceStatus: status,
		PaymentStatus:    payment,
		EntryTypeId:      entryTypeId,
		BadgeCode:        uuid.NewString(),
	}

	patch := map[string]any{
		"attendance_status": status,
		"payment_status":    payment,
	}
	if entryTypeId != nil {
		patch["entry_type_id"] = *entryTypeId
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "contact_id"}},
		DoUpdates: clause.Assignments(patch),
	}).Create(enrollment).Error
	if err != nil {
		return nil, err
	}

	return s.findByPair(tx, campaignId, contactId)
}

// ensure inserts the enrollment if absent and otherwise leaves it
// untouched, returning the surviving row. Bulk import uses this so
// re-imports never reset a status an operator already advanced.
func (s *EnrollmentService) ensure(tx *gorm.DB, campaignId, contactId int, status model.AttendanceStatus) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{
		CampaignId:       campaignId,
		ContactId:        contactId,
		AttendanceStatus: status,
		PaymentStatus:    model.PaymentNone,
		BadgeCode:        uuid.NewString(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "contact_id"}},
		DoNothing: true,
	}).Create(enrollment).Error
	if err != nil {
		return nil, err
	}
	return s.findByPair(tx, campaignId, contactId)
}

// GetEnrollment fetches one enrollment with its contact preloaded.
func (s *EnrollmentService) GetEnrollment(id int) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{}
	err := s.db.Preload("Contact").First(enrollment, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewNotFound("enrollment not found")
	} else if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ListByCampaign returns a campaign's enrollments with contacts.
func (s *EnrollmentService) ListByCampaign(campaignId int) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	err := s.db.Model(model.Enrollment{}).
		Preload("Contact").
		Where("campaign_id = ?", campaignId).
		Order("id").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

// SetAttendanceStatus moves one enrollment to the given status in a single
// atomic row update. Any status may move to any other; a missing id is
// reported as not found, never silently ignored.
func (s *EnrollmentService) SetAttendanceStatus(id int, status model.AttendanceStatus) error {
	if !status.Valid() {
		return common.NewValidation("unknown attendance status: " + string(status))
	}
	result := s.db.Model(model.Enrollment{}).
		Where("id = ?", id).
		Update("attendance_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("enrollment not found")
	}
	return nil
}

// CheckIn marks the enrollment behind a badge code as attended. The guard
// in the UPDATE makes concurrent scans of the same badge safe: exactly one
// clerk performs the transition, the other sees alreadyAttended.
func (s *EnrollmentService) CheckIn(badgeCode string) (enrollment *model.Enrollment, alreadyAttended bool, err error) {
	result := s.db.Model(model.Enrollment{}).
		Where("badge_code = ? AND attendance_status <> ?", badgeCode, model.Attended).
		Update("attendance_status", model.Attended)
	if result.Error != nil {
		return nil, false, result.Error
	}

	enrollment = &model.Enrollment{}
	err = s.db.Preload("Contact").
		Where("badge_code = ?", badgeCode).
		First(enrollment).Error
	if database.IsNotFound(err) {
		return nil, false, common.NewNotFound("badge not found")
	} else if err != nil {
		return nil, false, err
	}
	return enrollment, result.RowsAffected == 0, nil
}

// StatusCount is one row of the attendance dashboard aggregation.
type StatusCount struct {
	Status model.AttendanceStatus `json:"status"`
	Count  int64                  `json:"count"`
}

// CountByStatus aggregates a campaign's enrollments per attendance status
// in a single grouped query. Statuses with no rows are reported as zero so
// dashboards always see the full enumeration.
func (s *EnrollmentService) CountByStatus(campaignId int) ([]StatusCount, error) {
	var rows []StatusCount
	err := s.db.Model(model.Enrollment{}).
		Select("attendance_status as status, count(*) as count").
		Where("campaign_id = ?", campaignId).
		Group("attendance_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byStatus := make(map[model.AttendanceStatus]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	counts := make([]StatusCount, 0, len(model.AttendanceStatuses))
	for _, status := range model.AttendanceStatuses {
		counts = append(counts, StatusCount{Status: status, Count: byStatus[status]})
	}
	return counts, nil
}

// SaveFormResponses upserts the given answers for one enrollment. Each
// (enrollment, field) pair keeps at most one row; empty answers are
// skipped entirely so they never shadow a prior non-empty one.
func (s *EnrollmentService) SaveFormResponses(enrollmentId int, answers []AnswerInput) error {
	return s.saveFormResponses(s.db, enrollmentId, answers)
}

func (s *EnrollmentService) saveFormResponses(tx *gorm.DB, enrollmentId int, answers []AnswerInput) error {
	for _, answer := range answers {
		if answer.FieldId <= 0 || answer.empty() {
			continue
		}
		value, err := answer.serialize()
		if err != nil {
			return err
		}
		response := &model.FormResponse{
			EnrollmentId: enrollmentId,
			FieldId:      answer.FieldId,
			Value:        value,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "field_id"}},
			DoUpdates: clause.Assignments(map[string]any{"value": value}),
		}).Create(response).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetFormResponses returns the stored answers for one enrollment.
func (s *EnrollmentService) GetFormResponses(enrollmentId int) ([]*model.FormResponse, error) {
	var responses []*model.FormResponse
	err := s.db.Model(model.FormResponse{}).
		Where("enrollment_id = ?", enrollmentId).
		Order("field_id").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// DeleteEnrollment removes an enrollment and its responses by explicit
// administrative action.
func (s *EnrollmentService) DeleteEnrollment(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", id).Delete(&model.FormResponse{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Enrollment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.NewNotFound("enrollment not found")
		}
		return nil
	})
}
