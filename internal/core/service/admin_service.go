package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

// AdminService implements identity management for administrators.
type AdminService struct {
	repo  ports.IdentityRepository
	audit ports.AuditSink
	log   zerolog.Logger
}

func NewAdminService(repo ports.IdentityRepository, audit ports.AuditSink, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, audit: audit, log: log}
}

// ListUsers returns a page of identities.
func (s *AdminService) ListUsers(ctx context.Context, filter ports.UserFilter) (*ports.Page[*domain.User], error) {
	filter.Page, filter.Limit = normalizePaging(filter.Page, filter.Limit)
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, total, filter.Page, filter.Limit), nil
}

// ChangeRole assigns role to userID. Outstanding tokens are not re-issued: the
// role gate reads the new role on the user's next request. Admins cannot
// demote themselves, so the last admin cannot lock everyone out.
func (s *AdminService) ChangeRole(ctx context.Context, actorID, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if actorID == userID && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	user, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("actor_id", actorID).Str("user_id", userID).Str("role", role.String()).Msg("role changed")
	if s.audit != nil {
		s.audit.Record(domain.AuditEvent{
			Action: domain.AuditRoleChanged,
			UserID: userID,
			Detail: fmt.Sprintf("set to %s by %s", role, actorID),
		})
	}
	return user, nil
}
