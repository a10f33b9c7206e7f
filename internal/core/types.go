package core

import "time"

// CreativeStatus tracks where a creative sits in the review pipeline.
type CreativeStatus string

const (
	CreativeStatusGenerated CreativeStatus = "generated"
	CreativeStatusSelected  CreativeStatus = "selected"
)

// Dimension is a configurable creative angle (emotion, value proof, visual
// hook, ...) that generation requests can draw options from.
type Dimension struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Description string            `json:"description,omitempty"`
	Active      bool              `json:"is_active"`
	SortOrder   int               `json:"sort_order"`
	Options     []DimensionOption `json:"options"`
	CreatedAt   time.Time         `json:"-"`
	UpdatedAt   time.Time         `json:"-"`
}

// DimensionOption is one selectable angle inside a dimension. Keywords,
// visual hints, and templates feed both the AI prompt and the template
// fallback path.
type DimensionOption struct {
	ID          int64     `json:"id"`
	DimensionID int64     `json:"dimension_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords"`
	VisualHints []string  `json:"visual_hints"`
	Templates   []string  `json:"templates"`
	Active      bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Creative is a single generated ad concept. AI-generated creatives carry the
// structured scene fields; template fallbacks leave them empty.
type Creative struct {
	ID                 int64              `json:"id,omitempty"`
	Index              int                `json:"index,omitempty"`
	Title              string             `json:"title"`
	Content            string             `json:"content"`
	CoreConcept        string             `json:"core_concept,omitempty"`
	SceneDescription   string             `json:"scene_description,omitempty"`
	CameraLighting     string             `json:"camera_lighting,omitempty"`
	ColorProps         string             `json:"color_props,omitempty"`
	KeyNotes           string             `json:"key_notes,omitempty"`
	ChosenDimensions   []string           `json:"chosen_dimensions"`
	Keywords           []string           `json:"keywords"`
	VisualHints        []string           `json:"visual_hints"`
	SelectedDimensions map[string][]int64 `json:"selected_dimensions,omitempty"`
	Status             CreativeStatus     `json:"status,omitempty"`
	Selected           bool               `json:"is_selected"`
	AIGenerated        bool               `json:"ai_generated"`
	FallbackGenerated  bool               `json:"fallback_generated,omitempty"`
	GenerationParams   GenerationParams   `json:"generation_params"`
	CreatedAt          time.Time          `json:"created_at,omitempty"`
	UpdatedAt          time.Time          `json:"-"`
}

// GenerationParams records the inputs that produced a batch of creatives.
type GenerationParams struct {
	GameBackground     string             `json:"game_background,omitempty"`
	UserIdea           string             `json:"user_idea,omitempty"`
	CustomInputs       map[string]string  `json:"custom_inputs,omitempty"`
	SelectedDimensions map[string][]int64 `json:"selected_dimensions,omitempty"`
	Count              int                `json:"count"`
	Model              string             `json:"ai_model"`
	Timestamp          time.Time          `json:"timestamp"`
}
