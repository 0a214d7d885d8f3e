package services

import (
	"time"

	"github.com/aliirsyaadn/mindful-death/models"
)

// SummarizeGoals counts goals per category and priority. CompletionRate is a percentage
// rounded to one decimal, 0 for an empty list.
func SummarizeGoals(userID string, goals []models.Goal, now time.Time) models.GoalSummary {
	summary := models.GoalSummary{
		UserID:      userID,
		TotalGoals:  len(goals),
		ByCategory:  make(map[models.GoalCategory]int, len(models.GoalCategories)),
		ByPriority:  make(map[models.GoalPriority]int, 3),
		GeneratedAt: now,
	}
	for _, c := range models.GoalCategories {
		summary.ByCategory[c] = 0
	}

	for _, g := range goals {
		if g.Completed {
			summary.CompletedGoals++
		}
		summary.ByCategory[g.Category]++
		priority := g.Priority
		if priority == "" {
			priority = models.GoalPriorityMedium
		}
		summary.ByPriority[priority]++
	}

	if summary.TotalGoals > 0 {
		summary.CompletionRate = round1(float64(summary.CompletedGoals) * 100 / float64(summary.TotalGoals))
	}
	return summary
}
