package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

const defaultWatchSeconds = 10

var errUsage = errors.New("usage")

// parseKindID reads "<kind> [id]" command arguments.
func parseKindID(args []string, needID bool) (models.Kind, int64, error) {
	if len(args) == 0 {
		return "", 0, fmt.Errorf("%w: expected a kind (character or planet)", errUsage)
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return "", 0, err
	}
	if len(args) < 2 {
		if needID {
			return "", 0, fmt.Errorf("%w: expected an id after %s", errUsage, kind)
		}
		return kind, 0, nil
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid id %q", args[1])
	}
	return kind, id, nil
}

func (a *App) rememberRefresh(kind models.Kind, out models.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshes[kind] = out
}

// lastRefresh returns the outcome of the last full refresh of kind in this session.
func (a *App) lastRefresh(kind models.Kind) (models.Outcome, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out, ok := a.refreshes[kind]
	return out, ok
}

func (a *App) Refresh(ctx context.Context, args []string) error {
	if len(args) == 0 {
		results := a.sync.RefreshAll(ctx)
		for _, kind := range models.Kinds {
			out := results[kind]
			a.rememberRefresh(kind, out)
			printOutcome(a.out, "refresh "+kind.String(), out)
		}
		return nil
	}

	kind, id, err := parseKindID(args, false)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		printOutcome(a.out, fmt.Sprintf("refresh %s %d", kind, id), a.sync.RefreshByID(ctx, kind, id))
		return nil
	}

	out := a.sync.Refresh(ctx, kind)
	a.rememberRefresh(kind, out)
	printOutcome(a.out, "refresh "+kind.String(), out)
	return nil
}

// List prints the cached records of a kind. A failed refresh is reported
// only when there is nothing cached to show.
func (a *App) List(ctx context.Context, args []string) error {
	kind, _, err := parseKindID(args, false)
	if err != nil {
		return err
	}

	recs, err := a.cache.Collection(ctx, kind)
	if err != nil {
		return fmt.Errorf("read %s: %w", kind, err)
	}

	if len(recs) == 0 {
		if out, ok := a.lastRefresh(kind); ok && !out.OK() {
			printError(a.out, fmt.Sprintf("no cached %s records: %s", kind, out.Cause()))
		} else {
			printWarning(a.out, fmt.Sprintf("no cached %s records, try 'refresh %s'", kind, kind))
		}
		return nil
	}

	for _, r := range recs {
		_, _ = fmt.Fprintln(a.out, recordLine(r))
	}
	_, _ = dimColor.Fprintf(a.out, "%d %s records\n", len(recs), kind)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	kind, id, err := parseKindID(args, true)
	if err != nil {
		return err
	}

	rec, err := a.cache.ByID(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("read %s %d: %w", kind, id, err)
	}
	if rec == nil {
		printWarning(a.out, fmt.Sprintf("%s %d is not cached", kind, id))
		return nil
	}

	printRecord(a.out, rec)
	return nil
}

func (a *App) Favorite(ctx context.Context, args []string, favorite bool) error {
	kind, id, err := parseKindID(args, true)
	if err != nil {
		return err
	}

	action := "favorite"
	if !favorite {
		action = "unfavorite"
	}
	printOutcome(a.out, fmt.Sprintf("%s %s %d", action, kind, id), a.sync.SetFavorite(ctx, kind, id, favorite))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	kind, id, err := parseKindID(args, true)
	if err != nil {
		return err
	}

	printOutcome(a.out, fmt.Sprintf("delete %s %d", kind, id), a.sync.Delete(ctx, kind, id))
	return nil
}

func (a *App) AddCharacter(ctx context.Context) error {
	var c models.Character
	var err error

	if c.Name, err = GetSimpleText(a.in, "Name:", a.out); err != nil {
		return err
	}
	if c.ID, err = GetOptionalID(a.in, "Id (empty for a local id):", a.out); err != nil {
		return err
	}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Race:", &c.Race},
		{"Gender:", &c.Gender},
		{"Ki:", &c.Ki},
		{"Max ki:", &c.MaxKi},
		{"Affiliation:", &c.Affiliation},
	}
	for _, f := range fields {
		if *f.dst, err = GetSimpleText(a.in, f.prompt, a.out); err != nil {
			return err
		}
	}
	if c.Description, err = GetMultiline(a.in, "Description:", a.out); err != nil {
		return err
	}

	origin, err := GetOptionalID(a.in, "Origin planet id (empty for none):", a.out)
	if err != nil {
		return err
	}
	if origin != 0 {
		c.OriginPlanet = &models.Planet{ID: origin}
	}

	raw, err := GetMultiline(a.in, "Transformations, one per line as id,name,ki:", a.out)
	if err != nil {
		return err
	}
	if c.Transformations, err = parseTransformations(raw); err != nil {
		return err
	}

	printOutcome(a.out, "add character", a.sync.AddCharacter(ctx, c))
	return nil
}

func parseTransformations(raw string) ([]models.Transformation, error) {
	if raw == "" {
		return nil, nil
	}
	var out []models.Transformation
	for _, line := range strings.Split(raw, "\n") {
		parts := strings.SplitN(line, ",", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed transformation %q", line)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed transformation id %q", parts[0])
		}
		t := models.Transformation{ID: id, Name: strings.TrimSpace(parts[1])}
		if len(parts) == 3 {
			t.Ki = strings.TrimSpace(parts[2])
		}
		out = append(out, t)
	}
	return out, nil
}

func (a *App) AddPlanet(ctx context.Context) error {
	var p models.Planet
	var err error

	if p.Name, err = GetSimpleText(a.in, "Name:", a.out); err != nil {
		return err
	}
	if p.ID, err = GetOptionalID(a.in, "Id (empty for a local id):", a.out); err != nil {
		return err
	}
	if p.IsDestroyed, err = GetYesNo(a.in, "Destroyed?", a.out); err != nil {
		return err
	}
	if p.Description, err = GetMultiline(a.in, "Description:", a.out); err != nil {
		return err
	}

	printOutcome(a.out, "add planet", a.sync.AddPlanet(ctx, p))
	return nil
}

// Watch prints every emission of a live query until the window elapses.
//
//	watch planet            all planets for 10s
//	watch character 1 30    character 1 for 30s
func (a *App) Watch(ctx context.Context, args []string) error {
	kind, id, err := parseKindID(args, false)
	if err != nil {
		return err
	}
	seconds := defaultWatchSeconds
	if len(args) > 2 {
		if seconds, err = strconv.Atoi(args[2]); err != nil || seconds <= 0 {
			return fmt.Errorf("invalid duration %q", args[2])
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	defer cancel()

	if len(args) > 1 {
		ch, err := a.cache.ObserveByID(ctx, kind, id)
		if err != nil {
			return err
		}
		for snap := range ch {
			a.printStamp()
			switch {
			case snap.Err != nil:
				printError(a.out, snap.Err.Error())
			case snap.Value == nil:
				printWarning(a.out, fmt.Sprintf("%s %d is not cached", kind, id))
			default:
				printRecord(a.out, snap.Value)
			}
		}
		return nil
	}

	ch, err := a.cache.ObserveCollection(ctx, kind)
	if err != nil {
		return err
	}
	for snap := range ch {
		a.printStamp()
		if snap.Err != nil {
			printError(a.out, snap.Err.Error())
			continue
		}
		for _, r := range snap.Value {
			_, _ = fmt.Fprintln(a.out, recordLine(r))
		}
		_, _ = dimColor.Fprintf(a.out, "%d %s records\n", len(snap.Value), kind)
	}
	return nil
}

func (a *App) printStamp() {
	printSection(a.out, time.Now().Format(time.TimeOnly))
}

func (a *App) Prune(ctx context.Context) error {
	printOutcome(a.out, "prune", a.sync.PruneOrphans(ctx))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	printLabelValue(a.out, "Mode", string(a.Mode()))
	for _, kind := range models.Kinds {
		t, err := a.sync.LastSynced(ctx, kind)
		if err != nil {
			return fmt.Errorf("last sync of %s: %w", kind, err)
		}
		v := "never"
		if !t.IsZero() {
			v = t.Local().Format(time.DateTime)
		}
		printLabelValue(a.out, "Last "+kind.String()+" sync", v)
	}

	meta, err := a.store.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("read bookkeeping: %w", err)
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if strings.HasPrefix(k, "local_id_seq:") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		printLabelValue(a.out, "Last local "+strings.TrimPrefix(k, "local_id_seq:")+" id", meta[k])
	}
	return nil
}
