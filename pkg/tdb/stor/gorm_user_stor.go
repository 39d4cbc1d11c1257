package stor

import (
	"errors"

	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type GormUserStor struct {
	db *gorm.DB
}

func NewGormUserStor(db *gorm.DB) *GormUserStor {
	return &GormUserStor{db: db}
}

// CreateUser creates the user. If a user with the same email already exists
// the existing user is returned; bootstrap population treats duplicates as an
// already-satisfied condition rather than a failure.
func (s *GormUserStor) CreateUser(user *model.User) (*model.User, error) {
	var err error

	if existing, err2 := s.GetUserByEmail(user.Email); err2 == nil {
		return existing, nil
	}

	if user.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *GormUserStor) GetUserByID(userID int) (*model.User, error) {
	var user model.User

	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) GetUserByEmail(email string) (*model.User, error) {
	var user model.User

	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) GetUserByAPIToken(apiToken string) (*model.User, error) {
	var user model.User

	if apiToken == "" {
		return nil, errors.New("blank api token")
	}

	if err := s.db.Where("api_token = ?", apiToken).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
