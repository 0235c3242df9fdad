package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

func seededIdentities() *stubIdentityRepo {
	repo := newStubIdentityRepo()
	repo.users["1"] = &domain.User{ID: "1", Email: "user@example.com", Role: domain.RoleUser}
	repo.users["5"] = &domain.User{ID: "5", Email: "employer@example.com", Role: domain.RoleEmployer}
	repo.users["9"] = &domain.User{ID: "9", Email: "admin@example.com", Role: domain.RoleAdmin}
	return repo
}

func TestAdminService_ChangeRole(t *testing.T) {
	repo := seededIdentities()
	sink := &recordingSink{}
	svc := NewAdminService(repo, sink, zerolog.Nop())

	user, err := svc.ChangeRole(context.Background(), "9", "1", domain.RoleEmployer)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if user.Role != domain.RoleEmployer || repo.users["1"].Role != domain.RoleEmployer {
		t.Fatalf("role not persisted: %+v", user)
	}
	if got := sink.actions(); len(got) != 1 || got[0] != domain.AuditRoleChanged {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestAdminService_ChangeRole_Rejects(t *testing.T) {
	svc := NewAdminService(seededIdentities(), nil, zerolog.Nop())

	if _, err := svc.ChangeRole(context.Background(), "9", "1", domain.Role("root")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.ChangeRole(context.Background(), "9", "9", domain.RoleUser); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected self-demotion to be forbidden, got %v", err)
	}
	if _, err := svc.ChangeRole(context.Background(), "9", "404", domain.RoleUser); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_ListUsers(t *testing.T) {
	svc := NewAdminService(seededIdentities(), nil, zerolog.Nop())

	page, err := svc.ListUsers(context.Background(), ports.UserFilter{Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != "9" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Page != 1 || page.Limit != defaultLimit || page.TotalPages != 1 {
		t.Fatalf("unexpected paging: %+v", page)
	}

	if _, err := svc.ListUsers(context.Background(), ports.UserFilter{Role: "root"}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}
