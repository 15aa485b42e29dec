// Package summary derives the per-job report views: the flattened
// material list, the deduplicated tool list, the estimated time total
// and the plain-text estimate document. Everything here is computed
// from the current task list on demand and never persisted.
package summary

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jobsitelog/core/internal/domain/entities"
)

var (
	hourPattern   = regexp.MustCompile(`(\d+(\.\d+)?)\s*(h|hr|hour)`)
	minutePattern = regexp.MustCompile(`(\d+)\s*(m|min)`)
	filenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// AllMaterials flattens every task's material list into one sorted
// list. Duplicates are kept: if two tasks both need paint, the
// shopping list shows paint twice.
func AllMaterials(tasks []*entities.Task) []string {
	materials := []string{}
	for _, t := range tasks {
		materials = append(materials, t.Materials...)
	}
	sort.Strings(materials)
	return materials
}

// AllTools returns the case-sensitive union of every task's tool list,
// sorted ascending.
func AllTools(tasks []*entities.Task) []string {
	seen := map[string]struct{}{}
	tools := []string{}
	for _, t := range tasks {
		for _, tool := range t.Tools {
			if _, ok := seen[tool]; !ok {
				seen[tool] = struct{}{}
				tools = append(tools, tool)
			}
		}
	}
	sort.Strings(tools)
	return tools
}

// ParseEstimateMinutes converts a free-text time estimate into
// minutes. Recognized forms: an hour component ("2h", "1.5 hr",
// "2 hours"), a minute component ("30m", "45 min"), both together
// ("1h 30m"), or a bare number treated as hours ("2"). Anything else
// contributes zero; parsing never fails.
func ParseEstimateMinutes(estimate string) float64 {
	s := strings.ToLower(strings.TrimSpace(estimate))
	if s == "" {
		return 0
	}

	var minutes float64
	matched := false

	if m := hourPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			minutes += v * 60
			matched = true
		}
	}
	if m := minutePattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			minutes += float64(v)
			matched = true
		}
	}

	// Bare number, e.g. "2": assume hours.
	if !matched {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			minutes = v * 60
		}
	}

	return minutes
}

// TotalEstimatedMinutes sums the parsed estimates of every task.
func TotalEstimatedMinutes(tasks []*entities.Task) float64 {
	var total float64
	for _, t := range tasks {
		total += ParseEstimateMinutes(t.EstimatedTime)
	}
	return total
}

// FormatMinutes renders a minute total for display: "0h" for zero,
// otherwise "{h}h {m}m" with the zero component omitted.
func FormatMinutes(minutes float64) string {
	if minutes == 0 {
		return "0h"
	}
	h := int(math.Floor(minutes / 60))
	m := int(math.Round(math.Mod(minutes, 60)))

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

const divider = "=================================================="

// BuildEstimate renders the downloadable plain-text quote for a job.
// Returns ok=false when the job has no tasks; no document is produced
// in that case.
func BuildEstimate(job *entities.Job, now time.Time) (string, bool) {
	if len(job.Tasks) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("JOBSITE ESTIMATE\n")
	fmt.Fprintf(&b, "Job: %s\n", job.Address)
	if job.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", job.ClientName)
	}
	fmt.Fprintf(&b, "Date: %s\n", now.Format("1/2/2006"))
	fmt.Fprintf(&b, "Total Items: %d\n", len(job.Tasks))
	fmt.Fprintf(&b, "Total Est. Time: %s\n", FormatMinutes(TotalEstimatedMinutes(job.Tasks)))
	b.WriteString(divider + "\n\n")

	for i, task := range job.Tasks {
		fmt.Fprintf(&b, "ENTRY #%d: %s\n", i+1, strings.ToUpper(task.Title))
		if task.EstimatedTime != "" {
			fmt.Fprintf(&b, "Time Est: %s\n", task.EstimatedTime)
		}
		b.WriteString("--------------------------------------------------\n")

		if task.Description != "" {
			fmt.Fprintf(&b, "NOTES:\n%s\n\n", task.Description)
		}
		if len(task.Materials) > 0 {
			b.WriteString("MATERIALS:\n")
			for _, m := range task.Materials {
				fmt.Fprintf(&b, " - %s\n", m)
			}
			b.WriteString("\n")
		}
		if len(task.Tools) > 0 {
			b.WriteString("TOOLS:\n")
			for _, t := range task.Tools {
				fmt.Fprintf(&b, " - %s\n", t)
			}
			b.WriteString("\n")
		}
		if len(task.ImageURLs) > 0 {
			fmt.Fprintf(&b, "[Attached %d photo(s) to this item]\n", len(task.ImageURLs))
		}
		b.WriteString("\n" + divider + "\n\n")
	}

	b.WriteString(" MATERIAL LIST:\n")
	for _, m := range AllMaterials(job.Tasks) {
		fmt.Fprintf(&b, "[ ] %s\n", m)
	}
	b.WriteString("\nREQUIRED TOOLS:\n")
	for _, t := range AllTools(job.Tasks) {
		fmt.Fprintf(&b, "[ ] %s\n", t)
	}

	return b.String(), true
}

// EstimateFilename derives the suggested download filename from a job
// address: every non-alphanumeric character becomes an underscore.
func EstimateFilename(address string) string {
	return "Estimate_" + filenameChars.ReplaceAllString(address, "_") + ".txt"
}
