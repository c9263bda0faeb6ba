package service

import (
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"gorm.io/gorm"
)

// DoorRegistration is the walk-up registration request: contact fields,
// optional entry type and custom answers, and whether the guest should be
// accredited on the spot.
type DoorRegistration struct {
	Contact     ContactProfile `json:"contact"`
	EntryTypeId *int           `json:"entryTypeId"`
	Answers     []AnswerInput  `json:"answers"`
	AccreditNow bool           `json:"accreditNow"`
}

// DoorRegistrationResult is what the door clerk's screen needs back.
type DoorRegistrationResult struct {
	EnrollmentId     int                    `json:"enrollmentId"`
	ContactId        int                    `json:"contactId"`
	BadgeCode        string                 `json:"badgeCode"`
	AttendanceStatus model.AttendanceStatus `json:"attendanceStatus"`
	Accredited       bool                   `json:"accredited"`
}

// DoorService is the walk-up path: normalize, upsert the contact, create
// or update the enrollment, persist answers. It is built entirely from the
// idempotent contact/enrollment primitives, so concurrent registrations
// for the same email converge on one contact and one enrollment.
type DoorService struct {
	db                *gorm.DB
	campaignService   *CampaignService
	contactService    *ContactService
	enrollmentService *EnrollmentService
	notifier          Notifier
}

func NewDoorService(db *gorm.DB, campaigns *CampaignService, contacts *ContactService, enrollments *EnrollmentService, notifier Notifier) *DoorService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &DoorService{
		db:                db,
		campaignService:   campaigns,
		contactService:    contacts,
		enrollmentService: enrollments,
		notifier:          notifier,
	}
}

// targetStatus picks the enrollment status for a door registration:
// attended when the clerk accredits on the spot, otherwise confirmed for
// registration campaigns and invited for open ones.
func targetStatus(campaign *model.Campaign, accreditNow bool) model.AttendanceStatus {
	if accreditNow {
		return model.Attended
	}
	if campaign.RequiresRegistration {
		return model.Confirmed
	}
	return model.Invited
}

// Register performs the door registration and returns the resulting
// enrollment/contact pair. Campaigns that require payment refuse the door
// path; payment collection happens elsewhere.
func (s *DoorService) Register(campaignId int, request DoorRegistration) (*DoorRegistrationResult, error) {
	campaign, err := s.campaignService.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	if !campaign.Active {
		return nil, common.NewValidation("campaign is not active")
	}
	if campaign.RequiresPayment {
		return nil, common.NewValidation("campaign requires payment, door registration not allowed")
	}

	status := targetStatus(campaign, request.AccreditNow)

	var enrollment *model.Enrollment
	var previous model.AttendanceStatus
	err = s.db.Transaction(func(tx *gorm.DB) error {
		contact, err := s.contactService.upsert(tx, request.Contact)
		if err != nil {
			return err
		}

		if existing, err := s.enrollmentService.findByPair(tx, campaign.Id, contact.Id); err != nil {
			return err
		} else if existing != nil {
			previous = existing.AttendanceStatus
		}

		enrollment, err = s.enrollmentService.createOrUpdate(tx, campaign.Id, contact.Id, status, model.PaymentNone, request.EntryTypeId)
		if err != nil {
			return err
		}

		return s.enrollmentService.saveFormResponses(tx, enrollment.Id, request.Answers)
	})
	if err != nil {
		if common.KindOf(err) == common.KindUnknown {
			return nil, common.NewTransaction(err)
		}
		return nil, err
	}

	// after the commit only; a failed notification never unwinds the write
	s.notifier.EnrollmentChanged(enrollment, previous)

	return &DoorRegistrationResult{
		EnrollmentId:     enrollment.Id,
		ContactId:        enrollment.ContactId,
		BadgeCode:        enrollment.BadgeCode,
		AttendanceStatus: enrollment.AttendanceStatus,
		Accredited:       enrollment.AttendanceStatus == model.Attended,
	}, nil
}
