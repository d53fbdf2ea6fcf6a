package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"weddingsite/internal/domain"
)

const guestColumns = `id, name, email, phone, attendance, parent_id, created_at, updated_at`

type guestRepository struct {
	DB *sql.DB
}

// NewGuestRepository returns a domain.GuestRepository implemented with Postgres.
func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (name, email, phone, attendance, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		g.Name, nullString(g.Email), nullString(g.Phone), string(g.Attendance),
		nullStringPtr(g.ParentID), g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateName
		}
		return err
	}
	return nil
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) List(ctx context.Context) ([]*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGuests(rows)
}

func (r *guestRepository) ListByParentID(ctx context.Context, parentID string) ([]*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE parent_id = $1 ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGuests(rows)
}

func (r *guestRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM guests WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *guestRepository) FindByNameFold(ctx context.Context, name string) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE LOWER(name) = LOWER($1) ORDER BY name LIMIT 1`
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) Update(ctx context.Context, id string, patch domain.GuestPatch) error {
	query := `
		UPDATE guests
		SET name = COALESCE($1, name),
		    email = COALESCE($2, email),
		    phone = COALESCE($3, phone),
		    attendance = COALESCE($4, attendance),
		    updated_at = $5
		WHERE id = $6
	`
	var attendance *string
	if patch.Attendance != nil {
		s := string(*patch.Attendance)
		attendance = &s
	}
	result, err := r.DB.ExecContext(ctx, query,
		nullStringPtr(patch.Name), nullStringPtr(patch.Email), nullStringPtr(patch.Phone),
		nullStringPtr(attendance), time.Now(), id,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateName
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *guestRepository) UpdateAttendance(ctx context.Context, id string, attendance domain.Attendance, email *string) error {
	query := `
		UPDATE guests
		SET attendance = $1,
		    email = COALESCE($2, email),
		    updated_at = $3
		WHERE id = $4
	`
	result, err := r.DB.ExecContext(ctx, query, string(attendance), nullStringPtr(email), time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePartyRSVP applies every member patch in one transaction so a party
// submission is all-or-nothing.
func (r *guestRepository) UpdatePartyRSVP(ctx context.Context, updates []domain.MemberUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin party update: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE guests
		SET attendance = $1, email = $2, phone = $3, updated_at = $4
		WHERE id = $5
	`
	now := time.Now()
	for _, u := range updates {
		result, err := tx.ExecContext(ctx, query, string(u.Attendance), nullString(u.Email), nullString(u.Phone), now, u.ID)
		if err != nil {
			return fmt.Errorf("update guest %s: %w", u.ID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
	}
	return tx.Commit()
}

// DeleteWithMembers removes the guest and its party members in one
// transaction. Unknown ids delete zero rows and return nil.
func (r *guestRepository) DeleteWithMembers(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE parent_id = $1`, id); err != nil {
		return fmt.Errorf("delete party members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (*domain.Guest, error) {
	g := &domain.Guest{}
	var emailNull, phoneNull, parentNull sql.NullString
	var attendance string
	err := row.Scan(&g.ID, &g.Name, &emailNull, &phoneNull, &attendance, &parentNull, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.Email = emailNull.String
	g.Phone = phoneNull.String
	g.Attendance = domain.Attendance(attendance)
	if parentNull.Valid {
		g.ParentID = &parentNull.String
	}
	return g, nil
}

func collectGuests(rows *sql.Rows) ([]*domain.Guest, error) {
	var guests []*domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return guests, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
