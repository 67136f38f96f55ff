package models

// CharacterRow is a row of the characters table.
// Favorite is owned locally and is never written by a sync.
type CharacterRow struct {
	ID             int64
	Name           string
	Ki             string
	MaxKi          string
	Race           string
	Gender         string
	Description    string
	Image          string
	Affiliation    string
	OriginPlanetID *int64
	Favorite       bool
}

// PlanetRow is a row of the planets table.
type PlanetRow struct {
	ID          int64
	Name        string
	IsDestroyed bool
	Description string
	Image       string
	Favorite    bool
}

// TransformationRow is a row of the transformations table. CharacterID is
// mandatory: a transformation cannot exist without its owner.
type TransformationRow struct {
	ID          int64
	Name        string
	Image       string
	Ki          string
	CharacterID int64
}

// CharacterWithRelations is the joined read of one character: its row, the
// origin planet row (nil when unset or not cached) and its transformations
// ordered by id.
type CharacterWithRelations struct {
	Character       CharacterRow
	Planet          *PlanetRow
	Transformations []TransformationRow
}
