package service

import (
	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/util/common"

	"gorm.io/gorm"
)

// EventService manages events and subevents.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) AddEvent(event *model.Event) error {
	if event.Name == "" {
		return common.NewValidation("event name is required")
	}
	return s.db.Create(event).Error
}

func (s *EventService) GetEvent(id int) (*model.Event, error) {
	event := &model.Event{}
	err := s.db.Preload("Campaigns").First(event, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewNotFound("event not found")
	} else if err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents returns events visible to the caller. Unrestricted callers
// see everything; everyone else is filtered by the gate's allow-list, and
// an empty allow-list yields an empty result, not an error.
func (s *EventService) ListEvents(unrestricted bool, allowedIds []int) ([]*model.Event, error) {
	if !unrestricted && len(allowedIds) == 0 {
		return []*model.Event{}, nil
	}
	var events []*model.Event
	query := s.db.Model(model.Event{}).Order("starts_at desc")
	if !unrestricted {
		query = query.Where("id IN ?", allowedIds)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventService) UpdateEvent(event *model.Event) error {
	result := s.db.Model(model.Event{}).
		Where("id = ?", event.Id).
		Updates(map[string]any{
			"name":      event.Name,
			"location":  event.Location,
			"starts_at": event.StartsAt,
			"ends_at":   event.EndsAt,
			"active":    event.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("event not found")
	}
	return nil
}

func (s *EventService) DeleteEvent(id int) error {
	result := s.db.Delete(&model.Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("event not found")
	}
	return nil
}

func (s *EventService) AddSubevent(subevent *model.Subevent) error {
	if subevent.EventId <= 0 || subevent.Name == "" {
		return common.NewValidation("subevent needs an event and a name")
	}
	return s.db.Create(subevent).Error
}

func (s *EventService) ListSubevents(eventId int) ([]*model.Subevent, error) {
	var subevents []*model.Subevent
	err := s.db.Where("event_id = ?", eventId).Find(&subevents).Error
	if err != nil {
		return nil, err
	}
	return subevents, nil
}
