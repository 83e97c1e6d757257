package domain

// Summary is the consolidated view of all assets, used when the
// display is in consolidated mode instead of a per-asset list.
type Summary struct {
	Total int `json:"total"`
	Down  int `json:"down"`
}

// Summarize counts assets and how many of them are currently down.
// Assets still in their initial Checking state count toward Total only.
func Summarize(assets []Asset) Summary {
	s := Summary{Total: len(assets)}
	for _, a := range assets {
		if a.Status == StatusDown {
			s.Down++
		}
	}
	return s
}
