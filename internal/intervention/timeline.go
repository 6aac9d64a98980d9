package intervention

import (
	"fmt"
	"strconv"
	"strings"
)

type Phase struct {
	Phase      int      `json:"phase"`
	Weeks      string   `json:"weeks"`
	Activities []string `json:"activities"`
	Milestones []string `json:"milestones"`
}

// LeadingInt parses the integer at the start of a duration such as
// "6 weeks". The unit is ignored, so "6 weeks" and "6 months" compare
// equal.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Timeline splits an archetype's duration into two-week phases. A
// duration without a leading number yields no phases.
func Timeline(a Archetype) []Phase {
	weeks, ok := LeadingInt(a.Duration)
	if !ok || weeks <= 0 {
		return []Phase{}
	}
	phases := (weeks + 1) / 2
	out := make([]Phase, 0, phases)
	for i := 0; i < phases; i++ {
		pct := float64(i+1) * (100 / float64(phases))
		out = append(out, Phase{
			Phase:      i + 1,
			Weeks:      fmt.Sprintf("%d-%d", i*2+1, min(weeks, (i+1)*2)),
			Activities: []string{fmt.Sprintf("Phase %d activities for %s", i+1, a.Name)},
			Milestones: []string{fmt.Sprintf("Phase %d completion target: %s%%", i+1, strconv.FormatFloat(pct, 'f', -1, 64))},
		})
	}
	return out
}
