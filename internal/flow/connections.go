// Package flow owns the per-user session state of FlowMind: analyzed
// entries, tasks, drafts and the connection index. The analysis itself lives
// in the analyzer package; flow decides what happens to its results.
package flow

import (
	"fmt"
	"math"
	"strings"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// dateProximityDays is the due-date window within which two entries count
// as temporally related.
const dateProximityDays = 7

// FindConnections compares a new entry against all previously analyzed
// entries and returns the weighted links meeting the minimum strength.
// Pure: it never mutates its inputs. Strength accumulates as
// 2 per shared keyword, 3 per shared entity, 1 for an equal category and
// 2 for due dates within seven days of each other; reasons are collected in
// that order. From is always the new entry.
func FindConnections(newEntry *models.Entry, existing []*models.Entry) []models.Connection {
	var connections []models.Connection

	for _, other := range existing {
		if other.ID == newEntry.ID {
			continue
		}

		strength := 0
		var reasons []string

		if common := sharedStrings(newEntry.Keywords, other.Keywords); len(common) > 0 {
			strength += len(common) * 2
			reasons = append(reasons, "共同关键词: "+strings.Join(common, ", "))
		}

		for _, entityType := range models.EntityTypes {
			common := sharedStrings(newEntry.Entities[entityType], other.Entities[entityType])
			if len(common) > 0 {
				strength += len(common) * 3
				reasons = append(reasons, fmt.Sprintf("%s: %s", entityType, strings.Join(common, ", ")))
			}
		}

		if newEntry.Category == other.Category {
			strength++
			reasons = append(reasons, "相同类别")
		}

		if newEntry.DueDate != nil && other.DueDate != nil {
			daysApart := math.Abs(newEntry.DueDate.Sub(*other.DueDate).Hours()) / 24
			if daysApart <= dateProximityDays {
				strength += 2
				reasons = append(reasons, "时间相近")
			}
		}

		if strength < models.MinStrength {
			continue
		}

		connType := models.ConnectionWeak
		if strength >= models.StrongThreshold {
			connType = models.ConnectionStrong
		}

		connections = append(connections, models.Connection{
			ID:       newEntry.ID + "-" + other.ID,
			From:     newEntry.ID,
			To:       other.ID,
			Strength: strength,
			Reasons:  reasons,
			Type:     connType,
		})
	}

	return connections
}

// sharedStrings returns the elements of a that occur in b, in a's order.
// Duplicates in a are kept; each one weighs in again.
func sharedStrings(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var shared []string
	for _, s := range a {
		if _, ok := inB[s]; ok {
			shared = append(shared, s)
		}
	}
	return shared
}
