package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adforge/adforge/internal/core"
)

// SeedBuiltInDimensions inserts the bundled dimensions and options when they
// are not present yet. Existing rows are left untouched so edits survive
// restarts.
func (s *Store) SeedBuiltInDimensions(ctx context.Context, now time.Time) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for sortOrder, seed := range core.BuiltInDimensions {
		var existing int64
		err := s.DB.QueryRowContext(ctx, `SELECT id FROM dimensions WHERE name = ?`, seed.Name).Scan(&existing)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("seed dimensions: %w", err)
		}

		result, err := s.DB.ExecContext(ctx, `
			INSERT INTO dimensions (name, display_name, description, is_active, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, 1, ?, ?, ?)
		`, seed.Name, seed.DisplayName, seed.Description, sortOrder, now.UTC().Unix(), now.UTC().Unix())
		if err != nil {
			return fmt.Errorf("seed dimension %s: %w", seed.Name, err)
		}

		dimensionID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("seed dimension %s: %w", seed.Name, err)
		}

		for optOrder, opt := range seed.Options {
			keywords, err := json.Marshal(opt.Keywords)
			if err != nil {
				return fmt.Errorf("seed option %s: %w", opt.Name, err)
			}
			visualHints, err := json.Marshal(opt.VisualHints)
			if err != nil {
				return fmt.Errorf("seed option %s: %w", opt.Name, err)
			}
			templates, err := json.Marshal(opt.Templates)
			if err != nil {
				return fmt.Errorf("seed option %s: %w", opt.Name, err)
			}

			_, err = s.DB.ExecContext(ctx, `
				INSERT INTO dimension_options (dimension_id, name, description, keywords, visual_hints, templates, is_active, sort_order, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
			`, dimensionID, opt.Name, opt.Description, string(keywords), string(visualHints), string(templates), optOrder, now.UTC().Unix(), now.UTC().Unix())
			if err != nil {
				return fmt.Errorf("seed option %s: %w", opt.Name, err)
			}
		}
	}

	return nil
}

// ListDimensions returns active dimensions in sort order with their active
// options attached.
func (s *Store) ListDimensions(ctx context.Context) ([]core.Dimension, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, display_name, description, is_active, sort_order, created_at, updated_at
		FROM dimensions
		WHERE is_active = 1
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var dimensions []core.Dimension
	for rows.Next() {
		dim, err := scanDimension(rows)
		if err != nil {
			return nil, err
		}
		dimensions = append(dimensions, dim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}

	for i := range dimensions {
		options, err := s.listOptions(ctx, dimensions[i].ID)
		if err != nil {
			return nil, err
		}
		dimensions[i].Options = options
	}

	return dimensions, nil
}

// GetDimension returns a dimension by ID regardless of its active flag, or
// nil when it does not exist.
func (s *Store) GetDimension(ctx context.Context, id int64) (*core.Dimension, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, name, display_name, description, is_active, sort_order, created_at, updated_at
		FROM dimensions
		WHERE id = ?
	`, id)

	dim, err := scanDimension(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	options, err := s.listOptions(ctx, dim.ID)
	if err != nil {
		return nil, err
	}
	dim.Options = options

	return &dim, nil
}

// DimensionUpdate carries the mutable dimension fields; nil members are left
// unchanged.
type DimensionUpdate struct {
	DisplayName *string
	Description *string
	Active      *bool
	SortOrder   *int
}

// UpdateDimension applies a partial update. It reports whether a row matched.
func (s *Store) UpdateDimension(ctx context.Context, id int64, update DimensionUpdate, now time.Time) (bool, error) {
	if s == nil || s.DB == nil {
		return false, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	assignments := []string{"updated_at = ?"}
	args := []any{now.UTC().Unix()}

	if update.DisplayName != nil {
		assignments = append(assignments, "display_name = ?")
		args = append(args, strings.TrimSpace(*update.DisplayName))
	}
	if update.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Active != nil {
		active := 0
		if *update.Active {
			active = 1
		}
		assignments = append(assignments, "is_active = ?")
		args = append(args, active)
	}
	if update.SortOrder != nil {
		assignments = append(assignments, "sort_order = ?")
		args = append(args, *update.SortOrder)
	}

	args = append(args, id)
	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		UPDATE dimensions SET %s WHERE id = ?
	`, strings.Join(assignments, ", ")), args...)
	if err != nil {
		return false, fmt.Errorf("update dimension: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update dimension: %w", err)
	}
	return affected > 0, nil
}

// AddDimensionOption appends an option to a dimension, placed after the
// existing options.
func (s *Store) AddDimensionOption(ctx context.Context, dimensionID int64, opt core.DimensionOption, now time.Time) (*core.DimensionOption, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	name := strings.TrimSpace(opt.Name)
	if name == "" {
		return nil, errors.New("option name is required")
	}

	dim, err := s.GetDimension(ctx, dimensionID)
	if err != nil {
		return nil, err
	}
	if dim == nil {
		return nil, fmt.Errorf("dimension %d not found", dimensionID)
	}

	var sortOrder int
	if err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM dimension_options WHERE dimension_id = ?
	`, dimensionID).Scan(&sortOrder); err != nil {
		return nil, fmt.Errorf("add dimension option: %w", err)
	}

	keywords, err := json.Marshal(emptyIfNil(opt.Keywords))
	if err != nil {
		return nil, fmt.Errorf("encode option keywords: %w", err)
	}
	visualHints, err := json.Marshal(emptyIfNil(opt.VisualHints))
	if err != nil {
		return nil, fmt.Errorf("encode option visual hints: %w", err)
	}
	templates, err := json.Marshal(emptyIfNil(opt.Templates))
	if err != nil {
		return nil, fmt.Errorf("encode option templates: %w", err)
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO dimension_options (dimension_id, name, description, keywords, visual_hints, templates, is_active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
	`, dimensionID, name, opt.Description, string(keywords), string(visualHints), string(templates), sortOrder, now.UTC().Unix(), now.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("add dimension option: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("add dimension option: %w", err)
	}

	created := opt
	created.ID = id
	created.DimensionID = dimensionID
	created.Name = name
	created.Keywords = emptyIfNil(opt.Keywords)
	created.VisualHints = emptyIfNil(opt.VisualHints)
	created.Templates = emptyIfNil(opt.Templates)
	created.Active = true
	created.SortOrder = sortOrder
	created.CreatedAt = now.UTC()
	created.UpdatedAt = now.UTC()

	return &created, nil
}

// GetOptionsByID returns the active options matching the given IDs.
func (s *Store) GetOptionsByID(ctx context.Context, ids []int64) ([]core.DimensionOption, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, dimension_id, name, description, keywords, visual_hints, templates, is_active, sort_order, created_at, updated_at
		FROM dimension_options
		WHERE id IN (%s) AND is_active = 1
		ORDER BY sort_order, id
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("fetch options: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	return collectOptions(rows)
}

func (s *Store) listOptions(ctx context.Context, dimensionID int64) ([]core.DimensionOption, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, dimension_id, name, description, keywords, visual_hints, templates, is_active, sort_order, created_at, updated_at
		FROM dimension_options
		WHERE dimension_id = ? AND is_active = 1
		ORDER BY sort_order, id
	`, dimensionID)
	if err != nil {
		return nil, fmt.Errorf("list dimension options: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	return collectOptions(rows)
}

func collectOptions(rows *sql.Rows) ([]core.DimensionOption, error) {
	options := []core.DimensionOption{}
	for rows.Next() {
		var (
			opt           core.DimensionOption
			description   sql.NullString
			keywords      sql.NullString
			visualHints   sql.NullString
			templates     sql.NullString
			active        int
			createdAt     int64
			updatedAt     int64
		)
		if err := rows.Scan(&opt.ID, &opt.DimensionID, &opt.Name, &description, &keywords, &visualHints, &templates, &active, &opt.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan dimension option: %w", err)
		}

		opt.Description = description.String
		opt.Active = active == 1
		opt.CreatedAt = time.Unix(createdAt, 0).UTC()
		opt.UpdatedAt = time.Unix(updatedAt, 0).UTC()

		var err error
		if opt.Keywords, err = decodeStringList(keywords); err != nil {
			return nil, fmt.Errorf("decode option keywords: %w", err)
		}
		if opt.VisualHints, err = decodeStringList(visualHints); err != nil {
			return nil, fmt.Errorf("decode option visual hints: %w", err)
		}
		if opt.Templates, err = decodeStringList(templates); err != nil {
			return nil, fmt.Errorf("decode option templates: %w", err)
		}

		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan dimension options: %w", err)
	}

	return options, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDimension(row rowScanner) (core.Dimension, error) {
	var (
		dim         core.Dimension
		description sql.NullString
		active      int
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(&dim.ID, &dim.Name, &dim.DisplayName, &description, &active, &dim.SortOrder, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Dimension{}, err
		}
		return core.Dimension{}, fmt.Errorf("scan dimension: %w", err)
	}

	dim.Description = description.String
	dim.Active = active == 1
	dim.CreatedAt = time.Unix(createdAt, 0).UTC()
	dim.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return dim, nil
}

func decodeStringList(value sql.NullString) ([]string, error) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(value.String), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
