package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Deadline is a dated entry derived from an application or one of its
// requirements. It is never stored.
type Deadline struct {
	ID             uuid.UUID `json:"id"`
	ApplicationID  uuid.UUID `json:"applicationId"`
	UniversityID   uuid.UUID `json:"universityId"`
	UniversityName string    `json:"universityName"`
	Type           string    `json:"type"`
	Date           time.Time `json:"date"`
	Status         string    `json:"status"`
}

// CollectDeadlines flattens the application deadline and every dated
// requirement of each application into a single list, in input order.
func CollectDeadlines(apps []*Application) []Deadline {
	deadlines := make([]Deadline, 0, len(apps))
	for _, app := range apps {
		deadlines = append(deadlines, Deadline{
			ID:             app.ID,
			ApplicationID:  app.ID,
			UniversityID:   app.UniversityID,
			UniversityName: app.UniversityName(),
			Type:           string(app.ApplicationType),
			Date:           app.Deadline,
			Status:         string(app.Status),
		})

		for _, req := range app.Requirements {
			if req.Deadline == nil {
				continue
			}
			deadlines = append(deadlines, Deadline{
				ID:             req.ID,
				ApplicationID:  app.ID,
				UniversityID:   app.UniversityID,
				UniversityName: app.UniversityName(),
				Type:           req.RequirementType,
				Date:           *req.Deadline,
				Status:         string(req.Status),
			})
		}
	}
	return deadlines
}

// SortDeadlines orders deadlines by date, keeping input order for ties.
func SortDeadlines(deadlines []Deadline) {
	sort.SliceStable(deadlines, func(i, j int) bool {
		return deadlines[i].Date.Before(deadlines[j].Date)
	})
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
