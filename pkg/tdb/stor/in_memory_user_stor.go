package stor

import (
	"fmt"

	"github.com/cccb/transferd/pkg/tdb/model"
)

type InMemoryUserStor struct {
	ErrToReturn error
	users       []model.User
	lastID      int
}

func NewInMemoryUserStor(users []model.User) *InMemoryUserStor {
	return &InMemoryUserStor{users: users, lastID: 10000}
}

func (s *InMemoryUserStor) CreateUser(user *model.User) (*model.User, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	for _, u := range s.users {
		if u.Email == user.Email {
			existing := u
			return &existing, nil
		}
	}

	s.lastID++
	user.ID = s.lastID
	s.users = append(s.users, *user)
	return user, nil
}

func (s *InMemoryUserStor) GetUserByID(userID int) (*model.User, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	for _, u := range s.users {
		if u.ID == userID {
			user := u
			return &user, nil
		}
	}

	return nil, fmt.Errorf("no such user %d", userID)
}

func (s *InMemoryUserStor) GetUserByAPIToken(apiToken string) (*model.User, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	for _, u := range s.users {
		if u.ApiToken == apiToken {
			user := u
			return &user, nil
		}
	}

	return nil, fmt.Errorf("no user with given api token")
}
