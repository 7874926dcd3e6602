package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ptohub/internal/domain/auth"
	"ptohub/internal/store/memstore"
)

func newTestService() *Service {
	return NewService(memstore.New())
}

func createUser(t *testing.T, s *Service, input CreateInput) User {
	t.Helper()
	if input.EmploymentType == "" {
		input.EmploymentType = EmploymentFullTime
	}
	if input.HireDate.IsZero() {
		input.HireDate = time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	}
	if input.Password == "" {
		input.Password = "Secret123!"
	}
	user, err := s.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create user %s: %v", input.Email, err)
	}
	return user
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	s := newTestService()
	created := createUser(t, s, CreateInput{Name: "Dana", Email: "Dana@Example.com", Role: auth.RoleStaff})

	found, err := s.FindByEmail(context.Background(), "dana@example.COM")
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, found.ID)
	}

	if _, err := s.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	s := newTestService()
	createUser(t, s, CreateInput{Name: "Dana", Email: "dana@example.com", Role: auth.RoleStaff})

	_, err := s.Create(context.Background(), CreateInput{
		Name:           "Imposter",
		Email:          "DANA@example.com",
		Role:           auth.RoleStaff,
		EmploymentType: EmploymentFullTime,
		Password:       "Secret123!",
	})
	if err == nil {
		t.Fatal("expected duplicate email to be rejected")
	}
}

func TestCreateValidatesRoleAndEmploymentType(t *testing.T) {
	s := newTestService()

	if _, err := s.Create(context.Background(), CreateInput{Name: "X", Email: "x@example.com", Role: "CEO", EmploymentType: EmploymentFullTime, Password: "pw"}); err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
	if _, err := s.Create(context.Background(), CreateInput{Name: "X", Email: "x@example.com", Role: auth.RoleStaff, EmploymentType: "Contractor", Password: "pw"}); err == nil {
		t.Fatal("expected invalid employment type to be rejected")
	}
}

func TestManagerRelationships(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	manager := createUser(t, s, CreateInput{Name: "Morgan", Email: "morgan@example.com", Role: auth.RoleManager})
	report := createUser(t, s, CreateInput{Name: "Riley", Email: "riley@example.com", Role: auth.RoleStaff, ManagerID: manager.ID})
	loner := createUser(t, s, CreateInput{Name: "Alex", Email: "alex@example.com", Role: auth.RoleStaff})

	resolved, err := s.ManagerOf(ctx, report)
	if err != nil {
		t.Fatalf("manager lookup failed: %v", err)
	}
	if resolved.ID != manager.ID {
		t.Fatalf("expected manager %s, got %s", manager.ID, resolved.ID)
	}

	if _, err := s.ManagerOf(ctx, loner); !errors.Is(err, ErrNoManager) {
		t.Fatalf("expected ErrNoManager, got %v", err)
	}

	managed, err := s.IsManagerOf(ctx, manager.ID, report.ID)
	if err != nil {
		t.Fatalf("IsManagerOf failed: %v", err)
	}
	if !managed {
		t.Fatal("expected manager relationship")
	}
	managed, err = s.IsManagerOf(ctx, manager.ID, loner.ID)
	if err != nil {
		t.Fatalf("IsManagerOf failed: %v", err)
	}
	if managed {
		t.Fatal("expected no manager relationship")
	}

	reports, err := s.DirectReports(ctx, manager.ID)
	if err != nil {
		t.Fatalf("direct reports failed: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != report.ID {
		t.Fatalf("unexpected direct reports: %+v", reports)
	}
}

func TestAssignRoleAndManager(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	manager := createUser(t, s, CreateInput{Name: "Morgan", Email: "morgan@example.com", Role: auth.RoleManager})
	user := createUser(t, s, CreateInput{Name: "Riley", Email: "riley@example.com", Role: auth.RoleStaff})

	role := auth.RoleManager
	managerID := manager.ID
	updated, err := s.Assign(ctx, user.ID, &role, &managerID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if updated.Role != auth.RoleManager || updated.ManagerID != manager.ID {
		t.Fatalf("assignment not applied: %+v", updated)
	}

	// Reload to confirm persistence.
	reloaded, err := s.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Role != auth.RoleManager || reloaded.ManagerID != manager.ID {
		t.Fatalf("assignment not persisted: %+v", reloaded)
	}

	badRole := "CEO"
	if _, err := s.Assign(ctx, user.ID, &badRole, nil); err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
}

func TestPublicStripsPasswordHash(t *testing.T) {
	s := newTestService()
	user := createUser(t, s, CreateInput{Name: "Dana", Email: "dana@example.com", Role: auth.RoleStaff})

	if user.PasswordHash == "" {
		t.Fatal("expected stored password hash")
	}
	if public := user.Public(); public.PasswordHash != "" {
		t.Fatal("expected Public() to strip the password hash")
	}
}
