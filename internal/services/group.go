package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"calendrier/internal/domain"
)

// WarningMailerNotConfigured is reported when an invitation could not be delivered
// because no mail provider is set up.
const WarningMailerNotConfigured = "mailer-not-configured"

type groupService struct {
	groupRepo      domain.GroupRepository
	membershipRepo domain.MembershipRepository
	groupEventRepo domain.GroupEventRepository
	accountRepo    domain.AccountRepository
	emailService   domain.EmailService
	frontendURL    string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewGroupService returns a GroupService backed by the given repositories.
func NewGroupService(
	groupRepo domain.GroupRepository,
	membershipRepo domain.MembershipRepository,
	groupEventRepo domain.GroupEventRepository,
	accountRepo domain.AccountRepository,
	emailService domain.EmailService,
	frontendURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.GroupService {
	return &groupService{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		groupEventRepo: groupEventRepo,
		accountRepo:    accountRepo,
		emailService:   emailService,
		frontendURL:    strings.TrimRight(frontendURL, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, ownerID, name, description string) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", domain.ErrInvalidInput)
	}
	var desc *string
	if d := strings.TrimSpace(description); d != "" {
		desc = &d
	}

	group := domain.NewGroup(name, desc, ownerID, time.Now())
	_, err := GenerateUniqueInviteCode(ctx, func(ctx context.Context, code string) error {
		group.InviteCode = code
		return s.groupRepo.Create(ctx, group)
	}, DefaultInviteCodeAttempts)
	if err != nil {
		if errors.Is(err, domain.ErrInviteCodeCollision) {
			return nil, err
		}
		return nil, fmt.Errorf("create group: %w", err)
	}

	owner := domain.NewMembership(group.ID, ownerID, domain.RoleAdmin, group.CreatedAt)
	if err := s.membershipRepo.Create(ctx, owner); err != nil {
		// The group row is already stored and now has no admin.
		s.logger.ErrorContext(ctx, "group created without owner membership", "group_id", group.ID, "owner_id", ownerID, "err", err)
		return nil, fmt.Errorf("create owner membership: %w", err)
	}
	return group, nil
}

// JoinGroup runs the admission checks in order: code format, group lookup,
// existing membership, capacity, insert. The steps are not transactional, so two
// concurrent joins can both pass the capacity check.
func (s *groupService) JoinGroup(ctx context.Context, code, accountID string) (*domain.Membership, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidInviteCode(code) {
		return nil, false, domain.ErrInvalidCodeFormat
	}

	group, err := s.groupRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrGroupNotFound) {
			return nil, false, domain.ErrGroupNotFound
		}
		return nil, false, fmt.Errorf("get group by code: %w", err)
	}

	if existing, err := s.membershipRepo.Get(ctx, group.ID, accountID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get membership: %w", err)
	}

	count, err := s.membershipRepo.CountByGroupID(ctx, group.ID)
	if err != nil {
		return nil, false, fmt.Errorf("count members: %w", err)
	}
	if count >= domain.MaxGroupMembers {
		return nil, false, domain.ErrGroupFull
	}

	m := domain.NewMembership(group.ID, accountID, domain.RoleMember, time.Now())
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			existing, getErr := s.membershipRepo.Get(ctx, group.ID, accountID)
			if getErr != nil {
				return nil, false, fmt.Errorf("get membership: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create membership: %w", err)
	}
	return m, true, nil
}

func (s *groupService) ListMyGroups(ctx context.Context, accountID string) ([]*domain.GroupWithRole, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	groups, err := s.membershipRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if groups == nil {
		groups = []*domain.GroupWithRole{}
	}
	return groups, nil
}

func (s *groupService) GetGroup(ctx context.Context, groupID, accountID string) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := requireMembership(ctx, s.membershipRepo, groupID, accountID); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

func (s *groupService) ListGroupEvents(ctx context.Context, groupID, accountID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := requireMembership(ctx, s.membershipRepo, groupID, accountID); err != nil {
		return nil, err
	}
	events, err := s.groupEventRepo.ListByGroup(ctx, groupID, domain.TimeWindow{})
	if err != nil {
		return nil, fmt.Errorf("list group events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *groupService) InviteByEmail(ctx context.Context, groupID, inviterID, email string) (*domain.InvitationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	if _, err := requireMembership(ctx, s.membershipRepo, groupID, inviterID); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}

	inviterName := ""
	if inviter, err := s.accountRepo.GetByID(ctx, inviterID); err == nil {
		inviterName = inviter.DisplayName
		if inviterName == "" {
			inviterName = inviter.Email
		}
	}

	result := &domain.InvitationResult{
		Email:      addr.Address,
		InviteCode: group.InviteCode,
		AcceptURL:  s.frontendURL + "/join?code=" + url.QueryEscape(group.InviteCode),
	}
	err = s.emailService.SendGroupInvitation(ctx, &domain.GroupInvitationEmailData{
		Email:       addr.Address,
		InviterName: inviterName,
		GroupName:   group.Name,
		InviteCode:  group.InviteCode,
		AcceptURL:   result.AcceptURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMailerNotConfigured) {
			s.logger.WarnContext(ctx, "invitation not sent, mailer not configured", "group_id", groupID)
			result.Warning = WarningMailerNotConfigured
			return result, nil
		}
		return nil, fmt.Errorf("send group invitation: %w", err)
	}
	return result, nil
}

// requireMembership returns the caller's membership or ErrForbidden.
func requireMembership(ctx context.Context, repo domain.MembershipRepository, groupID, accountID string) (*domain.Membership, error) {
	m, err := repo.Get(ctx, groupID, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}
