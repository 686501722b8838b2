package postgres

import (
	"context"
	"database/sql"
	"strings"

	"calendrier/internal/domain"
)

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{DB: db}
}

// Create relies on the unique index on invite_code to detect collisions.
func (r *groupRepository) Create(ctx context.Context, g *domain.Group) error {
	query := `
		INSERT INTO groups (name, description, owner_id, invite_code, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		g.Name, nullableString(g.Description), g.OwnerID, g.InviteCode, g.CreatedAt,
	).Scan(&g.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInviteCode
	}
	return err
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := `SELECT id, name, description, owner_id, invite_code, created_at FROM groups WHERE id = $1`
	return r.get(ctx, query, id, domain.ErrNotFound)
}

func (r *groupRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Group, error) {
	query := `SELECT id, name, description, owner_id, invite_code, created_at FROM groups WHERE invite_code = $1`
	return r.get(ctx, query, code, domain.ErrGroupNotFound)
}

func (r *groupRepository) get(ctx context.Context, query string, arg any, missing error) (*domain.Group, error) {
	g := &domain.Group{}
	var description sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&g.ID, &g.Name, &description, &g.OwnerID, &g.InviteCode, &g.CreatedAt)
	if err != nil {
		return nil, notFound(err, missing)
	}
	g.Description = stringPtr(description)
	// CHAR(6) pads on some drivers.
	g.InviteCode = strings.TrimSpace(g.InviteCode)
	return g, nil
}
