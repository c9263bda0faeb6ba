package service

import (
	"github.com/eventops/credenza/database/model"

	"gorm.io/gorm"
)

// Module names permissions attach to. Kept as the original operator-facing
// identifiers so stored grants stay meaningful across deployments.
const (
	ModuleEvents        = "eventos"
	ModuleCampaigns     = "campanas"
	ModuleContacts      = "contactos"
	ModuleAccreditation = "acreditacion"
	ModuleForms         = "formularios"
	ModuleGrants        = "permisos"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// actionColumns maps actions to grant flag columns. Only these fixed
// names are ever interpolated into queries.
var actionColumns = map[Action]string{
	ActionRead:   "can_read",
	ActionCreate: "can_create",
	ActionUpdate: "can_update",
	ActionDelete: "can_delete",
}

// Decision is the outcome of a permission resolution. For reads without a
// target event, Allowed is true and EventIds carries the allow-list (which
// may be empty: the caller must then return an empty result set, not an
// error). Unrestricted identities skip allow-list filtering entirely.
type Decision struct {
	Allowed      bool
	Unrestricted bool
	EventIds     []int
}

// RolePolicy is the coarse role-level gate consulted before event scoping.
// The default allows everything; it exists as a named seam so role gating
// can be added without touching resolution call sites.
type RolePolicy interface {
	Allow(identityId int, module string, action Action) (bool, error)
}

type allowAllPolicy struct{}

func (allowAllPolicy) Allow(int, string, Action) (bool, error) { return true, nil }

// PermissionService resolves whether an identity may act on an event's
// module. Resolution is pure over the grant table: it never mutates state.
type PermissionService struct {
	db             *gorm.DB
	policy         RolePolicy
	rootIdentityId int
}

// NewPermissionService builds a resolver. rootIdentityId is the configured
// bypass identity (0 disables it); policy nil means allow-all.
func NewPermissionService(db *gorm.DB, rootIdentityId int, policy RolePolicy) *PermissionService {
	if policy == nil {
		policy = allowAllPolicy{}
	}
	return &PermissionService{db: db, policy: policy, rootIdentityId: rootIdentityId}
}

// IsUnrestricted reports whether the identity bypasses event scoping:
// either it holds the SUPER_ADMIN role or it is the configured root id.
func (s *PermissionService) IsUnrestricted(identityId int) (bool, error) {
	if s.rootIdentityId != 0 && identityId == s.rootIdentityId {
		return true, nil
	}
	var count int64
	err := s.db.Table("identity_roles").
		Joins("JOIN roles ON roles.id = identity_roles.role_id").
		Where("identity_roles.identity_id = ? AND roles.name = ?", identityId, model.SuperAdminRole).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Resolve decides whether identityId may perform action on module, scoped
// to eventId when given. With no event id, reads resolve to the allow-list
// of event ids instead of a flat deny; any other action is denied because
// mutations always target a concrete event.
func (s *PermissionService) Resolve(identityId int, eventId *int, module string, action Action) (Decision, error) {
	unrestricted, err := s.IsUnrestricted(identityId)
	if err != nil {
		return Decision{}, err
	}
	if unrestricted {
		return Decision{Allowed: true, Unrestricted: true}, nil
	}

	allowed, err := s.policy.Allow(identityId, module, action)
	if err != nil {
		return Decision{}, err
	}
	if !allowed {
		return Decision{}, nil
	}

	column, ok := actionColumns[action]
	if !ok {
		return Decision{}, nil
	}

	if eventId != nil {
		var count int64
		err := s.db.Model(model.EventGrant{}).
			Where("identity_id = ? AND event_id = ? AND (module = ? OR module = ?)",
				identityId, *eventId, module, model.WildcardModule).
			Where(column+" = ?", true).
			Count(&count).Error
		if err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: count > 0}, nil
	}

	if action != ActionRead {
		return Decision{}, nil
	}

	eventIds := []int{}
	err = s.db.Model(model.EventGrant{}).
		Distinct("event_id").
		Where("identity_id = ? AND (module = ? OR module = ?)", identityId, module, model.WildcardModule).
		Where(column+" = ?", true).
		Pluck("event_id", &eventIds).Error
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, EventIds: eventIds}, nil
}
