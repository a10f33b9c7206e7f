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

// SaveCreatives persists a batch of creatives and marks them selected. The
// stored rows are returned with their assigned IDs.
func (s *Store) SaveCreatives(ctx context.Context, creatives []core.Creative, now time.Time) ([]core.Creative, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if len(creatives) == 0 {
		return nil, errors.New("no creatives to save")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save creatives: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	saved := make([]core.Creative, 0, len(creatives))
	for _, creative := range creatives {
		title := strings.TrimSpace(creative.Title)
		if title == "" {
			title = strings.TrimSpace(creative.CoreConcept)
		}
		if title == "" {
			return nil, errors.New("creative title is required")
		}

		selectedDims, err := json.Marshal(creative.SelectedDimensions)
		if err != nil {
			return nil, fmt.Errorf("encode selected dimensions: %w", err)
		}
		keywords, err := json.Marshal(emptyIfNil(creative.Keywords))
		if err != nil {
			return nil, fmt.Errorf("encode creative keywords: %w", err)
		}
		visualHints, err := json.Marshal(emptyIfNil(creative.VisualHints))
		if err != nil {
			return nil, fmt.Errorf("encode creative visual hints: %w", err)
		}
		params, err := json.Marshal(creative.GenerationParams)
		if err != nil {
			return nil, fmt.Errorf("encode generation params: %w", err)
		}

		aiGenerated := 0
		if creative.AIGenerated {
			aiGenerated = 1
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO creatives (title, content, core_concept, scene_description, camera_lighting, color_props, key_notes,
				keywords, visual_hints, selected_dimensions, status, is_selected, ai_generated, generation_params, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)
		`, title, creative.Content, creative.CoreConcept, creative.SceneDescription, creative.CameraLighting,
			creative.ColorProps, creative.KeyNotes, string(keywords), string(visualHints), string(selectedDims),
			string(core.CreativeStatusSelected), aiGenerated, string(params), now.UTC().Unix(), now.UTC().Unix())
		if err != nil {
			return nil, fmt.Errorf("save creative: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("save creative: %w", err)
		}

		stored := creative
		stored.ID = id
		stored.Title = title
		stored.Status = core.CreativeStatusSelected
		stored.Selected = true
		stored.CreatedAt = now.UTC()
		stored.UpdatedAt = now.UTC()
		saved = append(saved, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save creatives: %w", err)
	}

	return saved, nil
}

// ListSelectedCreatives returns creatives flagged as selected, newest first.
func (s *Store) ListSelectedCreatives(ctx context.Context) ([]core.Creative, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, content, core_concept, scene_description, camera_lighting, color_props, key_notes,
			keywords, visual_hints, selected_dimensions, status, is_selected, ai_generated, generation_params, created_at, updated_at
		FROM creatives
		WHERE is_selected = 1
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list selected creatives: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	creatives := []core.Creative{}
	for rows.Next() {
		var (
			creative     core.Creative
			coreConcept  sql.NullString
			scene        sql.NullString
			camera       sql.NullString
			colorProps   sql.NullString
			keyNotes     sql.NullString
			keywords     sql.NullString
			visualHints  sql.NullString
			selectedDims sql.NullString
			status       string
			selected     int
			aiGenerated  int
			params       sql.NullString
			createdAt    int64
			updatedAt    int64
		)
		if err := rows.Scan(&creative.ID, &creative.Title, &creative.Content, &coreConcept, &scene, &camera,
			&colorProps, &keyNotes, &keywords, &visualHints, &selectedDims, &status, &selected, &aiGenerated,
			&params, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan creative: %w", err)
		}

		creative.CoreConcept = coreConcept.String
		creative.SceneDescription = scene.String
		creative.CameraLighting = camera.String
		creative.ColorProps = colorProps.String
		creative.KeyNotes = keyNotes.String
		creative.Status = core.CreativeStatus(status)
		creative.Selected = selected == 1
		creative.AIGenerated = aiGenerated == 1
		creative.CreatedAt = time.Unix(createdAt, 0).UTC()
		creative.UpdatedAt = time.Unix(updatedAt, 0).UTC()

		if creative.Keywords, err = decodeStringList(keywords); err != nil {
			return nil, fmt.Errorf("decode creative keywords: %w", err)
		}
		if creative.VisualHints, err = decodeStringList(visualHints); err != nil {
			return nil, fmt.Errorf("decode creative visual hints: %w", err)
		}
		if selectedDims.Valid && strings.TrimSpace(selectedDims.String) != "" {
			if err := json.Unmarshal([]byte(selectedDims.String), &creative.SelectedDimensions); err != nil {
				return nil, fmt.Errorf("decode selected dimensions: %w", err)
			}
		}
		if params.Valid && strings.TrimSpace(params.String) != "" {
			if err := json.Unmarshal([]byte(params.String), &creative.GenerationParams); err != nil {
				return nil, fmt.Errorf("decode generation params: %w", err)
			}
		}

		creatives = append(creatives, creative)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list selected creatives: %w", err)
	}

	return creatives, nil
}
