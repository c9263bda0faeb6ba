package service

import (
	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"gorm.io/gorm"
)

// CampaignService manages campaigns, their entry types and form schemas.
type CampaignService struct {
	db *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{db: db}
}

func (s *CampaignService) AddCampaign(campaign *model.Campaign) error {
	if campaign.EventId <= 0 || campaign.Name == "" {
		return common.NewValidation("campaign needs an event and a name")
	}
	err := s.db.Create(campaign).Error
	if database.IsUniqueViolation(err) {
		return common.NewConflict("campaign slug already in use")
	}
	return err
}

func (s *CampaignService) GetCampaign(id int) (*model.Campaign, error) {
	return s.getCampaign(s.db, id)
}

func (s *CampaignService) getCampaign(tx *gorm.DB, id int) (*model.Campaign, error) {
	campaign := &model.Campaign{}
	err := tx.First(campaign, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewNotFound("campaign not found")
	} else if err != nil {
		return nil, err
	}
	return campaign, nil
}

// ListCampaigns returns the campaigns visible through the event allow-list
// semantics, same contract as EventService.ListEvents.
func (s *CampaignService) ListCampaigns(unrestricted bool, allowedEventIds []int) ([]*model.Campaign, error) {
	if !unrestricted && len(allowedEventIds) == 0 {
		return []*model.Campaign{}, nil
	}
	var campaigns []*model.Campaign
	query := s.db.Model(model.Campaign{}).Order("id")
	if !unrestricted {
		query = query.Where("event_id IN ?", allowedEventIds)
	}
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (s *CampaignService) UpdateCampaign(campaign *model.Campaign) error {
	result := s.db.Model(model.Campaign{}).
		Where("id = ?", campaign.Id).
		Updates(map[string]any{
			"name":                  campaign.Name,
			"subevent_id":           campaign.SubeventId,
			"requires_registration": campaign.RequiresRegistration,
			"requires_payment":      campaign.RequiresPayment,
			"active":                campaign.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("campaign not found")
	}
	return nil
}

func (s *CampaignService) AddEntryType(entryType *model.EntryType) error {
	if entryType.CampaignId <= 0 || entryType.Name == "" {
		return common.NewValidation("entry type needs a campaign and a name")
	}
	return s.db.Create(entryType).Error
}

func (s *CampaignService) ListEntryTypes(campaignId int) ([]*model.EntryType, error) {
	var entryTypes []*model.EntryType
	err := s.db.Where("campaign_id = ?", campaignId).Find(&entryTypes).Error
	if err != nil {
		return nil, err
	}
	return entryTypes, nil
}

func (s *CampaignService) AddFormField(field *model.FormField) error {
	if field.CampaignId <= 0 || field.Label == "" {
		return common.NewValidation("form field needs a campaign and a label")
	}
	if field.ContactField != "" && !IsContactField(field.ContactField) {
		return common.NewValidation("unknown contact field: " + field.ContactField)
	}
	return s.db.Create(field).Error
}

// ListFormFields returns a campaign's active field schema in position
// order.
func (s *CampaignService) ListFormFields(campaignId int) ([]*model.FormField, error) {
	return s.listFormFields(s.db, campaignId)
}

func (s *CampaignService) listFormFields(tx *gorm.DB, campaignId int) ([]*model.FormField, error) {
	var fields []*model.FormField
	err := tx.Model(model.FormField{}).
		Where("campaign_id = ? AND active = ?", campaignId, true).
		Order("position, id").
		Find(&fields).Error
	if err != nil {
		return nil, err
	}
	return fields, nil
}
