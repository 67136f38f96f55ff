package models

// Meta describes the page returned by a list endpoint.
type Meta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// WireCharacter is a character as served by the remote API. The origin
// planet and transformations are embedded inline. There is no favorite field.
type WireCharacter struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	Ki              string               `json:"ki"`
	MaxKi           string               `json:"maxKi"`
	Race            string               `json:"race"`
	Gender          string               `json:"gender"`
	Description     string               `json:"description"`
	Image           string               `json:"image"`
	Affiliation     string               `json:"affiliation"`
	OriginPlanet    *WirePlanet          `json:"originPlanet,omitempty"`
	Transformations []WireTransformation `json:"transformations,omitempty"`
}

// WirePlanet is a planet as served by the remote API.
type WirePlanet struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsDestroyed bool   `json:"isDestroyed"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// WireTransformation carries no owner id; the owner is implied by nesting.
type WireTransformation struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Ki    string `json:"ki"`
}

// CharacterPage is the body of GET /characters.
type CharacterPage struct {
	Items []WireCharacter `json:"items"`
	Meta  Meta            `json:"meta"`
}

// PlanetPage is the body of GET /planets.
type PlanetPage struct {
	Items []WirePlanet `json:"items"`
	Meta  Meta         `json:"meta"`
}
