package service

import (
	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactService owns contact identity and deduplication. All contact
// writes in the system go through Upsert, which is what makes the
// one-row-per-email invariant enforceable.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// FindByEmail looks a contact up by normalized email. Returns (nil, nil)
// when no contact exists.
func (s *ContactService) FindByEmail(email string) (*model.Contact, error) {
	return s.findByEmail(s.db, email)
}

func (s *ContactService) findByEmail(tx *gorm.DB, email string) (*model.Contact, error) {
	contact := &model.Contact{}
	err := tx.Model(model.Contact{}).
		Where("email = ?", NormalizeEmail(email)).
		First(contact).
		Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return contact, nil
}

// Upsert creates a contact for the profile's email or merges the non-empty
// fields into the existing one. The insert relies on the unique index plus
// ON CONFLICT, never on a prior existence check, so two concurrent
// registrations for the same email converge on one row.
func (s *ContactService) Upsert(profile ContactProfile) (*model.Contact, error) {
	return s.upsert(s.db, profile)
}

func (s *ContactService) upsert(tx *gorm.DB, profile ContactProfile) (*model.Contact, error) {
	profile.Normalize()
	if profile.Email == "" {
		return nil, common.NewValidation("contact email is required")
	}

	contact := &model.Contact{
		Email:      profile.Email,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Phone:      profile.Phone,
		NationalId: profile.NationalId,
		Company:    profile.Company,
		Activity:   profile.Activity,
		Profession: profile.Profession,
		Commune:    profile.Commune,
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}
	if patch := profile.changes(); len(patch) > 0 {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(patch),
		}
	}

	if err := tx.Clauses(conflict).Create(contact).Error; err != nil {
		return nil, err
	}
	// re-read so the caller sees the merged state, not just the patch
	return s.findByEmail(tx, profile.Email)
}

// GetContact fetches one contact by id.
func (s *ContactService) GetContact(id int) (*model.Contact, error) {
	contact := &model.Contact{}
	err := s.db.First(contact, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewNotFound("contact not found")
	} else if err != nil {
		return nil, err
	}
	return contact, nil
}

// SearchContacts lists contacts matching q against email and name fields.
func (s *ContactService) SearchContacts(q string, limit int) ([]*model.Contact, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var contacts []*model.Contact
	query := s.db.Model(model.Contact{}).Limit(limit).Order("id desc")
	if q != "" {
		like := "%" + q + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}
	if err := query.Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// DeleteContact removes a contact by explicit administrative action. The
// engine itself never deletes contacts.
func (s *ContactService) DeleteContact(id int) error {
	result := s.db.Delete(&model.Contact{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("contact not found")
	}
	return nil
}
