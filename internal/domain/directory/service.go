// Package directory resolves user records and the manager/direct-report
// relationships the PTO workflow leans on for approver assignment.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ptohub/internal/domain/auth"
	"ptohub/internal/store"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrNoManager = errors.New("user has no manager")
)

type Service struct {
	store store.Tabular
}

func NewService(tabular store.Tabular) *Service {
	return &Service{store: tabular}
}

func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	row, err := s.store.Get(ctx, store.CollectionUsers, id)
	if errors.Is(err, store.ErrNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return decodeUser(row)
}

// FindByEmail matches case-insensitively; emails are unique in the directory.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return User{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, user := range users {
		if strings.ToLower(user.Email) == needle {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.store.List(ctx, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		user, err := decodeUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// ManagerOf resolves the current manager of a user from the live org chart.
func (s *Service) ManagerOf(ctx context.Context, user User) (User, error) {
	if user.ManagerID == "" {
		return User{}, ErrNoManager
	}
	manager, err := s.FindByID(ctx, user.ManagerID)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrNoManager
	}
	return manager, err
}

// IsManagerOf reports whether managerID is currently the manager of userID.
func (s *Service) IsManagerOf(ctx context.Context, managerID, userID string) (bool, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.ManagerID != "" && user.ManagerID == managerID, nil
}

func (s *Service) DirectReports(ctx context.Context, managerID string) ([]User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var reports []User
	for _, user := range users {
		if user.ManagerID == managerID {
			reports = append(reports, user)
		}
	}
	return reports, nil
}

type CreateInput struct {
	Name           string
	Email          string
	Role           string
	ManagerID      string
	EmploymentType string
	HireDate       time.Time
	Password       string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	if !auth.ValidRole(input.Role) {
		return User{}, fmt.Errorf("invalid role %q", input.Role)
	}
	if input.EmploymentType != EmploymentFullTime && input.EmploymentType != EmploymentPartTime {
		return User{}, fmt.Errorf("invalid employment type %q", input.EmploymentType)
	}
	if _, err := s.FindByEmail(ctx, input.Email); err == nil {
		return User{}, fmt.Errorf("email %s already registered", input.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(input.Name),
		Email:          strings.TrimSpace(input.Email),
		Role:           input.Role,
		ManagerID:      input.ManagerID,
		EmploymentType: input.EmploymentType,
		HireDate:       input.HireDate,
		PasswordHash:   hash,
		CreatedAt:      time.Now().UTC(),
	}
	row, err := encodeUser(user)
	if err != nil {
		return User{}, err
	}
	stored, err := s.store.Append(ctx, store.CollectionUsers, row)
	if err != nil {
		return User{}, err
	}
	user.Version = stored.Version
	return user, nil
}

// Assign updates the mutable parts of a user record: role and manager.
func (s *Service) Assign(ctx context.Context, userID string, role, managerID *string) (User, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if role != nil {
		if !auth.ValidRole(*role) {
			return User{}, fmt.Errorf("invalid role %q", *role)
		}
		user.Role = *role
	}
	if managerID != nil {
		if *managerID != "" {
			if _, err := s.FindByID(ctx, *managerID); err != nil {
				return User{}, err
			}
		}
		user.ManagerID = *managerID
	}
	row, err := encodeUser(user)
	if err != nil {
		return User{}, err
	}
	stored, err := s.store.Update(ctx, store.CollectionUsers, row)
	if err != nil {
		return User{}, err
	}
	user.Version = stored.Version
	return user, nil
}

func encodeUser(user User) (store.Row, error) {
	doc, err := json.Marshal(user)
	if err != nil {
		return store.Row{}, err
	}
	return store.Row{ID: user.ID, Version: user.Version, Doc: doc}, nil
}

func decodeUser(row store.Row) (User, error) {
	var user User
	if err := json.Unmarshal(row.Doc, &user); err != nil {
		return User{}, err
	}
	user.Version = row.Version
	return user, nil
}
