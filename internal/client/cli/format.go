package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
	favColor     = color.New(color.FgYellow)
)

func printSection(w io.Writer, title string) {
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	_, _ = errorColor.Fprintf(w, "✗ %s\n", msg)
}

func printLabelValue(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	_, _ = fmt.Fprintln(w, value)
}

// printOutcome reports a write-side result in one line.
func printOutcome(w io.Writer, action string, out models.Outcome) {
	if !out.OK() {
		printError(w, fmt.Sprintf("%s failed: %s", action, out.Cause()))
		return
	}

	msg := action + " done"
	if n := out.Planets + out.Characters + out.Transformations; n > 0 {
		msg = fmt.Sprintf("%s: %d planets, %d characters, %d transformations",
			msg, out.Planets, out.Characters, out.Transformations)
	}
	printSuccess(w, msg)
}

func star(fav bool) string {
	if fav {
		return favColor.Sprint("★")
	}
	return " "
}

// recordLine renders the one-line listing form of a record.
func recordLine(r models.Record) string {
	var extra string
	switch {
	case r.Character != nil:
		extra = r.Character.Race
		if r.Character.OriginPlanet != nil {
			extra += ", " + r.Character.OriginPlanet.Name
		}
	case r.Planet != nil:
		if r.Planet.IsDestroyed {
			extra = "destroyed"
		}
	}

	line := fmt.Sprintf("%s %6d  %s", star(r.IsFavorite()), r.ID(), r.Name())
	if extra != "" {
		line += dimColor.Sprintf("  (%s)", strings.TrimPrefix(extra, ", "))
	}
	return line
}

func printCharacter(w io.Writer, c *models.Character) {
	printSection(w, fmt.Sprintf("%s %s #%d", star(c.Favorite), c.Name, c.ID))
	printLabelValue(w, "Race", c.Race)
	printLabelValue(w, "Gender", c.Gender)
	printLabelValue(w, "Ki", c.Ki)
	printLabelValue(w, "Max ki", c.MaxKi)
	printLabelValue(w, "Affiliation", c.Affiliation)
	if c.OriginPlanet != nil {
		printLabelValue(w, "Origin", fmt.Sprintf("%s #%d", c.OriginPlanet.Name, c.OriginPlanet.ID))
	}
	printLabelValue(w, "Description", c.Description)
	for _, t := range c.Transformations {
		printLabelValue(w, "Transformation", fmt.Sprintf("%s (ki %s)", t.Name, t.Ki))
	}
}

func printPlanet(w io.Writer, p *models.Planet) {
	printSection(w, fmt.Sprintf("%s %s #%d", star(p.Favorite), p.Name, p.ID))
	printLabelValue(w, "Destroyed", fmt.Sprint(p.IsDestroyed))
	printLabelValue(w, "Description", p.Description)
}

func printRecord(w io.Writer, r *models.Record) {
	switch {
	case r.Character != nil:
		printCharacter(w, r.Character)
	case r.Planet != nil:
		printPlanet(w, r.Planet)
	}
}
