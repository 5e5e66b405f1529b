package journal

import (
	"cmp"
	"slices"
	"time"
)

const topActionLimit = 5

type StatusCount struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Rate   float64 `json:"rate"`
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

type Summary struct {
	Total             int           `json:"total"`
	Statuses          []StatusCount `json:"statuses"`
	TopActions        []ActionCount `json:"top_actions"`
	AverageConfidence float64       `json:"average_confidence"`
	AverageElapsedMS  float64       `json:"average_elapsed_ms"`
	First             time.Time     `json:"first,omitzero"`
	Last              time.Time     `json:"last,omitzero"`
}

func (s Summary) Rate(status string) float64 {
	for _, sc := range s.Statuses {
		if sc.Status == status {
			return sc.Rate
		}
	}
	return 0
}

func (j *Journal) Summary() Summary {
	j.mu.Lock()
	entries := slices.Clone(j.store.Entries)
	j.mu.Unlock()
	return Summarize(entries)
}

func Summarize(entries []Entry) Summary {
	summary := Summary{Total: len(entries), Statuses: []StatusCount{}, TopActions: []ActionCount{}}
	if len(entries) == 0 {
		return summary
	}

	statuses := map[string]int{}
	actions := map[string]int{}
	var confidence float64
	var elapsed int64
	for _, e := range entries {
		statuses[e.Status]++
		if e.Action != "" {
			actions[e.Action]++
		}
		confidence += e.Confidence
		elapsed += e.ElapsedMS
		if summary.First.IsZero() || e.At.Before(summary.First) {
			summary.First = e.At
		}
		if e.At.After(summary.Last) {
			summary.Last = e.At
		}
	}

	total := float64(len(entries))
	for status, count := range statuses {
		summary.Statuses = append(summary.Statuses, StatusCount{
			Status: status,
			Count:  count,
			Rate:   float64(count) / total * 100,
		})
	}
	slices.SortFunc(summary.Statuses, func(a, b StatusCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Status, b.Status))
	})

	for action, count := range actions {
		summary.TopActions = append(summary.TopActions, ActionCount{Action: action, Count: count})
	}
	slices.SortFunc(summary.TopActions, func(a, b ActionCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Action, b.Action))
	})
	if len(summary.TopActions) > topActionLimit {
		summary.TopActions = summary.TopActions[:topActionLimit]
	}

	summary.AverageConfidence = confidence / total
	summary.AverageElapsedMS = float64(elapsed) / total
	return summary
}
