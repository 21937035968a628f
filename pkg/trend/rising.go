package trend

import "sort"

// Status classifies how fast a name is gaining mentions.
type Status string

const (
	StatusNew    Status = "new"
	StatusHot    Status = "hot"
	StatusRising Status = "rising"
)

// Mover is a name with its growth between two snapshots.
type Mover struct {
	Name     string
	Current  int
	Previous int
	Velocity float64 // (current - previous) / previous, or current when new
	Status   Status
}

// Rising compares current counts against previous ones and returns the
// names that are new, hot or rising, fastest first. Names absent from
// previous count as new once they reach two mentions. limit <= 0 keeps
// every mover.
func Rising(current, previous map[string]int, limit int) []Mover {
	var movers []Mover
	for name, cur := range current {
		prev := previous[name]

		var velocity float64
		var status Status
		if prev == 0 {
			velocity = float64(cur)
			if cur >= 2 {
				status = StatusNew
			}
		} else {
			velocity = float64(cur-prev) / float64(prev)
			switch {
			case velocity > 1.0 && cur >= 3:
				status = StatusHot
			case velocity > 0.5:
				status = StatusRising
			}
		}

		if status == "" {
			continue
		}
		movers = append(movers, Mover{
			Name:     name,
			Current:  cur,
			Previous: prev,
			Velocity: velocity,
			Status:   status,
		})
	}

	sort.Slice(movers, func(i, j int) bool {
		if movers[i].Velocity != movers[j].Velocity {
			return movers[i].Velocity > movers[j].Velocity
		}
		return movers[i].Name < movers[j].Name
	})

	if limit > 0 && len(movers) > limit {
		movers = movers[:limit]
	}
	return movers
}
