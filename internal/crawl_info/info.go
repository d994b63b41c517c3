package crawlinfo

import "time"

// RepoInfo là kết quả crawl của một repository trong một run
type RepoInfo struct {
	Repo      string `json:"repo"`
	Collected int    `json:"collected"`
	Skipped   int    `json:"skipped"`
	Degraded  int    `json:"degraded"`
}

// Summary tổng hợp kết quả của cả run
type Summary struct {
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Repos      []RepoInfo `json:"repos"`
}

func (s *Summary) TotalCollected() int {
	total := 0
	for _, r := range s.Repos {
		total += r.Collected
	}
	return total
}

func (s *Summary) TotalSkipped() int {
	total := 0
	for _, r := range s.Repos {
		total += r.Skipped
	}
	return total
}
