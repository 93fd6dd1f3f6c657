package app

import (
	"sort"

	"hiring-contest-service/internal/domain"
)

// RankSubmissions orders submissions by score descending, then duration ascending.
// Remaining ties fall back to submission time and id so the order is total; ranks are
// positional and never shared.
func RankSubmissions(submissions []domain.Submission) []domain.LeaderboardEntry {
	sorted := make([]domain.Submission, len(submissions))
	copy(sorted, submissions)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DurationSeconds != b.DurationSeconds {
			return a.DurationSeconds < b.DurationSeconds
		}
		if !a.SubmissionTime.Equal(b.SubmissionTime) {
			return a.SubmissionTime.Before(b.SubmissionTime)
		}
		return a.ID < b.ID
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	for i, s := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:            i + 1,
			SubmissionID:    s.ID,
			CandidateID:     s.CandidateID,
			Score:           s.Score,
			Total:           s.Total,
			DurationSeconds: s.DurationSeconds,
			SubmissionTime:  s.SubmissionTime,
		})
	}
	return entries
}
