package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/pkg/database"
)

// FamilyRepository persists families, parents and their links to students.
type FamilyRepository struct {
	db *sqlx.DB
}

// NewFamilyRepository constructs a FamilyRepository.
func NewFamilyRepository(db *sqlx.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

const (
	familyColumns = `id, name, discount_tier, notes, created_at, updated_at`
	parentColumns = `id, family_id, name, phone_encrypted, phone_hash, pin_hash, created_at, updated_at`
)

// CreateWithMembers inserts the family, its parents, its students and every
// parent/student link in one transaction.
func (r *FamilyRepository) CreateWithMembers(ctx context.Context, family *models.Family, parents []*models.Parent, students []*models.Student, links []models.ParentStudent) error {
	now := time.Now().UTC()
	if family.ID == "" {
		family.ID = uuid.NewString()
	}
	family.CreatedAt = now
	family.UpdatedAt = now

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const familyQuery = `INSERT INTO families (id, name, discount_tier, notes, created_at, updated_at) VALUES (:id, :name, :discount_tier, :notes, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, familyQuery, family); err != nil {
			return fmt.Errorf("create family: %w", err)
		}

		const parentQuery = `INSERT INTO parents (id, family_id, name, phone_encrypted, phone_hash, pin_hash, created_at, updated_at) VALUES (:id, :family_id, :name, :phone_encrypted, :phone_hash, :pin_hash, :created_at, :updated_at)`
		for _, parent := range parents {
			if parent.ID == "" {
				parent.ID = uuid.NewString()
			}
			parent.FamilyID = family.ID
			parent.CreatedAt = now
			parent.UpdatedAt = now
			if _, err := tx.NamedExecContext(ctx, parentQuery, parent); err != nil {
				return fmt.Errorf("create parent: %w", err)
			}
		}

		for _, student := range students {
			familyID := family.ID
			student.FamilyID = &familyID
			if err := insertStudent(ctx, tx, student); err != nil {
				return err
			}
		}

		const linkQuery = `INSERT INTO parent_students (parent_id, student_id, relationship) VALUES (:parent_id, :student_id, :relationship)`
		for _, link := range links {
			if _, err := tx.NamedExecContext(ctx, linkQuery, link); err != nil {
				return fmt.Errorf("link parent student: %w", err)
			}
		}
		return nil
	})
}

// FindByID returns a family.
func (r *FamilyRepository) FindByID(ctx context.Context, id string) (*models.Family, error) {
	query := `SELECT ` + familyColumns + ` FROM families WHERE id = $1`
	var family models.Family
	if err := r.db.GetContext(ctx, &family, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find family: %w", err)
	}
	return &family, nil
}

// FindByStudent returns the family a student belongs to. sql.ErrNoRows is
// returned when the student has no family.
func (r *FamilyRepository) FindByStudent(ctx context.Context, studentID string) (*models.Family, error) {
	const query = `SELECT f.id, f.name, f.discount_tier, f.notes, f.created_at, f.updated_at
        FROM families f JOIN students s ON s.family_id = f.id WHERE s.id = $1`
	var family models.Family
	if err := r.db.GetContext(ctx, &family, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find family by student: %w", err)
	}
	return &family, nil
}

// ListParents returns the parents of a family.
func (r *FamilyRepository) ListParents(ctx context.Context, familyID string) ([]models.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE family_id = $1 ORDER BY created_at ASC`
	var parents []models.Parent
	if err := r.db.SelectContext(ctx, &parents, query, familyID); err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	return parents, nil
}

// UpdateDiscountTier changes the tier used for future payments.
func (r *FamilyRepository) UpdateDiscountTier(ctx context.Context, id string, tier int) error {
	const query = `UPDATE families SET discount_tier = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, tier, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update discount tier: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update discount tier rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindParentByPhoneHash looks a parent up by the deterministic phone hash.
func (r *FamilyRepository) FindParentByPhoneHash(ctx context.Context, hash string) (*models.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE phone_hash = $1 LIMIT 1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parent by phone: %w", err)
	}
	return &parent, nil
}

// FindParentByID returns a parent.
func (r *FamilyRepository) FindParentByID(ctx context.Context, id string) (*models.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE id = $1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parent: %w", err)
	}
	return &parent, nil
}

// ParentHasStudent reports whether a parent is linked to a student.
func (r *FamilyRepository) ParentHasStudent(ctx context.Context, parentID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM parent_students WHERE parent_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, parentID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check parent student: %w", err)
	}
	return true, nil
}
