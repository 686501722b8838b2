package postgres

import (
	"context"
	"database/sql"
	"strings"

	"calendrier/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{DB: db}
}

func (r *membershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, m.GroupID, m.AccountID, string(m.Role), m.CreatedAt).Scan(&m.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}
	return err
}

func (r *membershipRepository) Get(ctx context.Context, groupID, accountID string) (*domain.Membership, error) {
	query := `
		SELECT id, group_id, user_id, role, created_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`
	m := &domain.Membership{}
	var role string
	err := r.DB.QueryRowContext(ctx, query, groupID, accountID).Scan(&m.ID, &m.GroupID, &m.AccountID, &role, &m.CreatedAt)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	m.Role = domain.Role(role)
	return m, nil
}

func (r *membershipRepository) CountByGroupID(ctx context.Context, groupID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM group_members WHERE group_id = $1`, groupID).Scan(&n)
	return n, err
}

func (r *membershipRepository) ListByAccountID(ctx context.Context, accountID string) ([]*domain.GroupWithRole, error) {
	query := `
		SELECT g.id, g.name, g.description, g.owner_id, g.invite_code, g.created_at, m.role
		FROM group_members m
		JOIN groups g ON g.id = m.group_id
		WHERE m.user_id = $1
		ORDER BY g.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.GroupWithRole, 0)
	for rows.Next() {
		g := &domain.Group{}
		var description sql.NullString
		var role string
		if err := rows.Scan(&g.ID, &g.Name, &description, &g.OwnerID, &g.InviteCode, &g.CreatedAt, &role); err != nil {
			return nil, err
		}
		g.Description = stringPtr(description)
		g.InviteCode = strings.TrimSpace(g.InviteCode)
		list = append(list, &domain.GroupWithRole{Group: g, Role: domain.Role(role)})
	}
	return list, rows.Err()
}
