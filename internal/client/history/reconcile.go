// Package history turns the raw viewed-log list into what "my page" shows:
// newest first, one row per viewed item, split into consultations and
// precedents.
package history

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

type Mode string

const (
	ModeConsultation Mode = "consultation"
	ModePrecedent    Mode = "precedent"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeConsultation, ModePrecedent:
		return Mode(s), nil
	case "":
		return ModeConsultation, nil
	}
	return "", fmt.Errorf("unknown history mode %q", s)
}

// Ref points at a viewed item.
type Ref struct {
	Mode Mode
	ID   models.RefID
}

func set(id *models.RefID) bool {
	return id != nil && *id != ""
}

// Valid reports whether exactly one of the two foreign keys is set.
func Valid(e models.ViewedLog) bool {
	return set(e.ConsultationID) != set(e.PrecedentID)
}

// RefOf returns the item an entry points at. ok is false for invalid entries.
func RefOf(e models.ViewedLog) (Ref, bool) {
	switch {
	case !Valid(e):
		return Ref{}, false
	case set(e.ConsultationID):
		return Ref{Mode: ModeConsultation, ID: *e.ConsultationID}, true
	default:
		return Ref{Mode: ModePrecedent, ID: *e.PrecedentID}, true
	}
}

// Reconcile sorts entries newest first, keeps those belonging to mode and
// drops repeat views of the same item, keeping the newest. Entries with
// both or neither key set never appear. The input is not modified and
// Reconcile(Reconcile(x, m), m) equals Reconcile(x, m).
func Reconcile(entries []models.ViewedLog, mode Mode) []models.ViewedLog {
	sorted := make([]models.ViewedLog, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})

	seen := make(map[models.RefID]struct{}, len(sorted))
	out := make([]models.ViewedLog, 0, len(sorted))
	for _, e := range sorted {
		ref, ok := RefOf(e)
		if !ok || ref.Mode != mode {
			continue
		}
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Contains reports whether ref was already viewed.
func Contains(entries []models.ViewedLog, ref Ref) bool {
	for _, e := range entries {
		if got, ok := RefOf(e); ok && got == ref {
			return true
		}
	}
	return false
}
