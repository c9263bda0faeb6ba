package service

import (
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantService manages the event grant rows the resolver reads.
type GrantService struct {
	db *gorm.DB
}

func NewGrantService(db *gorm.DB) *GrantService {
	return &GrantService{db: db}
}

// Upsert stores a grant. At most one row exists per
// (identity, event, module); re-submitting the same key updates the four
// action flags in place.
func (s *GrantService) Upsert(grant *model.EventGrant) (*model.EventGrant, error) {
	if grant.IdentityId <= 0 || grant.EventId <= 0 {
		return nil, common.NewValidation("identityId and eventId are required")
	}
	if grant.Module == "" {
		return nil, common.NewValidation("module is required")
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity_id"}, {Name: "event_id"}, {Name: "module"}},
		DoUpdates: clause.Assignments(map[string]any{
			"can_read":   grant.CanRead,
			"can_create": grant.CanCreate,
			"can_update": grant.CanUpdate,
			"can_delete": grant.CanDelete,
		}),
	}).Create(grant).Error
	if err != nil {
		return nil, err
	}

	stored := &model.EventGrant{}
	err = s.db.Where("identity_id = ? AND event_id = ? AND module = ?",
		grant.IdentityId, grant.EventId, grant.Module).
		First(stored).Error
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListByIdentity returns every grant held by one identity.
func (s *GrantService) ListByIdentity(identityId int) ([]*model.EventGrant, error) {
	var grants []*model.EventGrant
	err := s.db.Model(model.EventGrant{}).
		Where("identity_id = ?", identityId).
		Order("event_id, module").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// Delete removes one grant row by id.
func (s *GrantService) Delete(id int) error {
	result := s.db.Delete(&model.EventGrant{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("grant not found")
	}
	return nil
}
