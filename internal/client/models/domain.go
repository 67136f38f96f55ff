// Package models defines the records handled by the cache: the wire shape
// returned by the remote API, the persisted table rows and the denormalized
// domain values handed to consumers.
package models

// Character is the denormalized domain view of a cached character: the row
// joined with its optional origin planet and its transformations.
type Character struct {
	ID              int64
	Name            string
	Ki              string
	MaxKi           string
	Race            string
	Gender          string
	Description     string
	Image           string
	Affiliation     string
	OriginPlanet    *Planet
	Transformations []Transformation
	Favorite        bool
}

// Planet is the domain view of a cached planet.
type Planet struct {
	ID          int64
	Name        string
	IsDestroyed bool
	Description string
	Image       string
	Favorite    bool
}

// Transformation is the domain view of a character transformation.
type Transformation struct {
	ID    int64
	Name  string
	Image string
	Ki    string
}

// Record is a kind-tagged domain value, used by the kind-generic read API.
// Exactly one of Character and Planet is set.
type Record struct {
	Kind      Kind
	Character *Character
	Planet    *Planet
}

// ID returns the identifier of whichever value is set.
func (r Record) ID() int64 {
	switch {
	case r.Character != nil:
		return r.Character.ID
	case r.Planet != nil:
		return r.Planet.ID
	}
	return 0
}

// Name returns the display name of whichever value is set.
func (r Record) Name() string {
	switch {
	case r.Character != nil:
		return r.Character.Name
	case r.Planet != nil:
		return r.Planet.Name
	}
	return ""
}

// IsFavorite reports the local favorite flag.
func (r Record) IsFavorite() bool {
	switch {
	case r.Character != nil:
		return r.Character.Favorite
	case r.Planet != nil:
		return r.Planet.Favorite
	}
	return false
}
