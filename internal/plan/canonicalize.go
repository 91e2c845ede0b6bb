package plan

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/smartplan/internal/domain"
)

// Canonicalize returns a canonical JSON representation of the scheduling
// inputs. Dependency lists are sorted and deduplicated since they are sets;
// task order is kept because it decides tie breaking.
func Canonicalize(tasks []Task, prefs Preferences, start domain.Date) ([]byte, error) {
	items := make([]map[string]interface{}, len(tasks))
	for i, t := range tasks {
		deps := append([]string(nil), dependencySet(t)...)
		sort.Strings(deps)
		items[i] = map[string]interface{}{
			"id":           t.ID,
			"title":        t.Title,
			"description":  t.Description,
			"dependencies": deps,
			"est_hours":    t.EstHours,
		}
	}

	// encoding/json sorts map keys
	return json.Marshal(map[string]interface{}{
		"tasks":              items,
		"work_per_day_hours": prefs.WorkPerDayHours,
		"start":              start.String(),
	})
}

// Fingerprint computes the blake3 hash of the canonicalized inputs. Two runs
// with equal fingerprints produce identical plans.
func Fingerprint(tasks []Task, prefs Preferences, start domain.Date) (string, error) {
	canonical, err := Canonicalize(tasks, prefs, start)
	if err != nil {
		return "", fmt.Errorf("canonicalize plan inputs: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash plan inputs: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
