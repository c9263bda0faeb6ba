package service

import (
	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/util/common"
	"github.com/eventops/credenza/util/crypto"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"
)

// AuthService authenticates identities for the session login flow and
// manages identity accounts.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// CheckIdentity verifies a username/password pair plus the TOTP code when
// the identity has a second factor enrolled. Returns nil on any failure;
// the reasons are logged, never reported to the caller.
func (s *AuthService) CheckIdentity(username, password, twoFactorCode string) *model.Identity {
	identity := &model.Identity{}
	err := s.db.Model(model.Identity{}).
		Preload("Roles").
		Where("username = ?", username).
		First(identity).
		Error
	if database.IsNotFound(err) {
		return nil
	} else if err != nil {
		logger.Warning("check identity err:", err)
		return nil
	}

	if !crypto.CheckPasswordHash(identity.PasswordHash, password) {
		return nil
	}

	if identity.TotpSecret != "" {
		if gotp.NewDefaultTOTP(identity.TotpSecret).Now() != twoFactorCode {
			return nil
		}
	}

	return identity
}

// GetIdentity loads one identity with its roles.
func (s *AuthService) GetIdentity(id int) (*model.Identity, error) {
	identity := &model.Identity{}
	err := s.db.Preload("Roles").First(identity, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewNotFound("identity not found")
	} else if err != nil {
		return nil, err
	}
	return identity, nil
}

// AddIdentity creates an identity with a hashed password.
func (s *AuthService) AddIdentity(username, password string) (*model.Identity, error) {
	if username == "" || password == "" {
		return nil, common.NewValidation("username and password are required")
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	identity := &model.Identity{Username: username, PasswordHash: hash}
	err = s.db.Create(identity).Error
	if database.IsUniqueViolation(err) {
		return nil, common.NewConflict("username already taken")
	} else if err != nil {
		return nil, err
	}
	return identity, nil
}

// AssignRole attaches a named role to an identity, creating nothing twice.
func (s *AuthService) AssignRole(identityId int, roleName string) error {
	identity, err := s.GetIdentity(identityId)
	if err != nil {
		return err
	}
	role := &model.Role{}
	err = s.db.Where("name = ?", roleName).First(role).Error
	if database.IsNotFound(err) {
		return common.NewNotFound("role not found: " + roleName)
	} else if err != nil {
		return err
	}
	for _, held := range identity.Roles {
		if held.Id == role.Id {
			return nil
		}
	}
	return s.db.Model(identity).Association("Roles").Append(role)
}

// UpdatePassword replaces an identity's password hash.
func (s *AuthService) UpdatePassword(identityId int, password string) error {
	if password == "" {
		return common.NewValidation("password can not be empty")
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	result := s.db.Model(model.Identity{}).
		Where("id = ?", identityId).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewNotFound("identity not found")
	}
	return nil
}
