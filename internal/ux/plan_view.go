package ux

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/felixgeelhaar/smartplan/internal/plan"
)

// PlanView renders a scheduled plan as a table followed by its summary.
type PlanView struct {
	Goal        string
	PlanID      string
	Fingerprint string
	Plan        *plan.Plan
}

// RenderText implements TextRenderer.
func (v PlanView) RenderText(s Styles) string {
	var b strings.Builder

	heading := "Plan"
	if v.Goal != "" {
		heading = "Plan: " + v.Goal
	}
	b.WriteString(s.Title.Render(heading))
	b.WriteString("\n")
	if v.PlanID != "" {
		b.WriteString(s.Muted.Render("id " + v.PlanID))
		b.WriteString("\n")
	}
	if v.Fingerprint != "" {
		b.WriteString(s.Muted.Render("fingerprint " + shortHash(v.Fingerprint)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.Plan == nil || len(v.Plan.Tasks) == 0 {
		b.WriteString(s.Muted.Render("No tasks."))
		b.WriteString("\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("#", "ID", "TITLE", "HOURS", "DAYS", "START", "END", "DEPENDS ON").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})
	for i, task := range v.Plan.Tasks {
		t.Row(
			strconv.Itoa(i+1),
			task.ID,
			task.Title,
			FormatHours(task.EstHours),
			strconv.Itoa(task.DurationDays()),
			task.EarliestStart.String(),
			task.LatestEnd.String(),
			strings.Join(task.Dependencies, ", "),
		)
	}
	b.WriteString(t.String())
	b.WriteString("\n\n")
	b.WriteString(renderSummary(s, v.Plan.Summary))
	return b.String()
}

func renderSummary(s Styles, sum plan.TimelineSummary) string {
	var b strings.Builder
	if sum.StartDate != nil && sum.EndDate != nil {
		days := sum.StartDate.DaysUntil(*sum.EndDate) + 1
		fmt.Fprintf(&b, "%d tasks from %s to %s (%d %s)\n",
			sum.TotalTasks, sum.StartDate, sum.EndDate, days, plural(days, "day", "days"))
	}

	if dl := sum.Deadline; dl != nil {
		if dl.Feasible {
			b.WriteString(s.Success.Render(fmt.Sprintf("Deadline %s met with %d %s of slack",
				dl.Deadline, dl.SlackDays, plural(dl.SlackDays, "day", "days"))))
		} else {
			late := -dl.SlackDays
			b.WriteString(s.Warning.Render(fmt.Sprintf("Deadline %s missed by %d %s",
				dl.Deadline, late, plural(late, "day", "days"))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// OrderView renders the dependency order found by `smartplan validate`.
type OrderView struct {
	Source string
	Order  []string
}

// RenderText implements TextRenderer.
func (v OrderView) RenderText(s Styles) string {
	var b strings.Builder
	b.WriteString(s.Success.Render(fmt.Sprintf("%s is valid: %d %s",
		v.Source, len(v.Order), plural(len(v.Order), "task", "tasks"))))
	b.WriteString("\n")
	for i, id := range v.Order {
		fmt.Fprintf(&b, "%s %s\n", s.Muted.Render(fmt.Sprintf("%3d.", i+1)), id)
	}
	return b.String()
}

// FormatHours prints an estimate without trailing zeros.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
