// Package mapper converts between the three shapes of a record: the wire
// form returned by the remote API, the persisted row and the domain value.
// All functions are pure.
package mapper

import "github.com/dmitrijs2005/dbcache/internal/client/models"

// CharacterRowFromWire keeps remote-origin columns only. Favorite stays false
// here; the store never writes it on upsert.
func CharacterRowFromWire(c models.WireCharacter) models.CharacterRow {
	row := models.CharacterRow{
		ID:          c.ID,
		Name:        c.Name,
		Ki:          c.Ki,
		MaxKi:       c.MaxKi,
		Race:        c.Race,
		Gender:      c.Gender,
		Description: c.Description,
		Image:       c.Image,
		Affiliation: c.Affiliation,
	}
	if c.OriginPlanet != nil {
		id := c.OriginPlanet.ID
		row.OriginPlanetID = &id
	}
	return row
}

func PlanetRowFromWire(p models.WirePlanet) models.PlanetRow {
	return models.PlanetRow{
		ID:          p.ID,
		Name:        p.Name,
		IsDestroyed: p.IsDestroyed,
		Description: p.Description,
		Image:       p.Image,
	}
}

// TransformationRowFromWire stamps the owner id, which the wire form lacks.
func TransformationRowFromWire(t models.WireTransformation, characterID int64) models.TransformationRow {
	return models.TransformationRow{
		ID:          t.ID,
		Name:        t.Name,
		Image:       t.Image,
		Ki:          t.Ki,
		CharacterID: characterID,
	}
}

func CharacterFromRow(r models.CharacterWithRelations) models.Character {
	c := models.Character{
		ID:              r.Character.ID,
		Name:            r.Character.Name,
		Ki:              r.Character.Ki,
		MaxKi:           r.Character.MaxKi,
		Race:            r.Character.Race,
		Gender:          r.Character.Gender,
		Description:     r.Character.Description,
		Image:           r.Character.Image,
		Affiliation:     r.Character.Affiliation,
		Transformations: make([]models.Transformation, 0, len(r.Transformations)),
		Favorite:        r.Character.Favorite,
	}
	if r.Planet != nil {
		p := PlanetFromRow(*r.Planet)
		c.OriginPlanet = &p
	}
	for _, t := range r.Transformations {
		c.Transformations = append(c.Transformations, TransformationFromRow(t))
	}
	return c
}

func PlanetFromRow(p models.PlanetRow) models.Planet {
	return models.Planet{
		ID:          p.ID,
		Name:        p.Name,
		IsDestroyed: p.IsDestroyed,
		Description: p.Description,
		Image:       p.Image,
		Favorite:    p.Favorite,
	}
}

func TransformationFromRow(t models.TransformationRow) models.Transformation {
	return models.Transformation{ID: t.ID, Name: t.Name, Image: t.Image, Ki: t.Ki}
}

// CharacterRowFromDomain flattens a domain character for a local insert.
// Nested transformations are not part of the row and are ignored.
func CharacterRowFromDomain(c models.Character) models.CharacterRow {
	row := models.CharacterRow{
		ID:          c.ID,
		Name:        c.Name,
		Ki:          c.Ki,
		MaxKi:       c.MaxKi,
		Race:        c.Race,
		Gender:      c.Gender,
		Description: c.Description,
		Image:       c.Image,
		Affiliation: c.Affiliation,
		Favorite:    c.Favorite,
	}
	if c.OriginPlanet != nil {
		id := c.OriginPlanet.ID
		row.OriginPlanetID = &id
	}
	return row
}

func PlanetRowFromDomain(p models.Planet) models.PlanetRow {
	return models.PlanetRow{
		ID:          p.ID,
		Name:        p.Name,
		IsDestroyed: p.IsDestroyed,
		Description: p.Description,
		Image:       p.Image,
		Favorite:    p.Favorite,
	}
}

// PlanetsFromCharacters collects the distinct origin planets embedded in a
// page, in first-seen order. A later copy of the same id replaces the earlier
// one in place.
func PlanetsFromCharacters(chars []models.WireCharacter) []models.PlanetRow {
	index := make(map[int64]int)
	var out []models.PlanetRow
	for _, c := range chars {
		if c.OriginPlanet == nil {
			continue
		}
		row := PlanetRowFromWire(*c.OriginPlanet)
		if i, ok := index[row.ID]; ok {
			out[i] = row
			continue
		}
		index[row.ID] = len(out)
		out = append(out, row)
	}
	return out
}

// TransformationsFromCharacters flattens the embedded transformations of a
// page, each stamped with its owner's id.
func TransformationsFromCharacters(chars []models.WireCharacter) []models.TransformationRow {
	var out []models.TransformationRow
	for _, c := range chars {
		for _, t := range c.Transformations {
			out = append(out, TransformationRowFromWire(t, c.ID))
		}
	}
	return out
}

func CharacterRowsFromWire(chars []models.WireCharacter) []models.CharacterRow {
	out := make([]models.CharacterRow, 0, len(chars))
	for _, c := range chars {
		out = append(out, CharacterRowFromWire(c))
	}
	return out
}

func PlanetRowsFromWire(planets []models.WirePlanet) []models.PlanetRow {
	out := make([]models.PlanetRow, 0, len(planets))
	for _, p := range planets {
		out = append(out, PlanetRowFromWire(p))
	}
	return out
}
