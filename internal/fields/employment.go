package fields

import (
	"metrosim/internal/agent"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// Employment is the workplace side of a node: how many jobs exist
// against how many are filled, and how happy the workers commuting in
// are with that commute.
type Employment struct {
	Workers            SimpleDensity   `json:"workers"`
	Jobs               SimpleDensity   `json:"jobs"`
	WorkplaceHappiness WeightedAverage `json:"workplace_happiness"`
	CommuteDuration    WeightedAverage `json:"commute_duration"`
}

// JobSaturation is the fraction of jobs that are filled. A node with no
// jobs at all is reported as fully saturated.
func (e Employment) JobSaturation() float64 {
	if e.Jobs.Total == 0 {
		return 1.0
	}
	return float64(e.Workers.Total) / float64(e.Jobs.Total)
}

// JobVacancy is the fraction of jobs that are unfilled.
func (e Employment) JobVacancy() float64 {
	return 1.0 - e.JobSaturation()
}

// UnfilledJobs is the raw count of vacant positions.
func (e Employment) UnfilledJobs() uint64 {
	if e.Jobs.Total < e.Workers.Total {
		return 0
	}
	return e.Jobs.Total - e.Workers.Total
}

func computeEmploymentLeaf(t tile.Tile, width uint64, extra ComputationData) Employment {
	if t.Kind != tile.Workplace {
		return Employment{
			Workers: simpleDensityFromTotal(0, width),
			Jobs:    simpleDensityFromTotal(0, width),
		}
	}

	happiness := WeightedAverage{}
	commute := WeightedAverage{}
	for _, id := range t.Agents {
		a := extra.agent(agent.AgentID(id))
		happiness = happiness.AddSample(a.WorkplaceHappinessScore())
		commute = commute.AddSample(a.AverageCommuteLength(agent.CommuteFromWork))
	}

	return Employment{
		Workers:            simpleDensityFromTotal(uint64(len(t.Agents)), width),
		Jobs:               simpleDensityFromTotal(uint64(t.Density), width),
		WorkplaceHappiness: happiness,
		CommuteDuration:    commute,
	}
}

func computeEmploymentBranch(children quadtree.QuadMap[foldResult]) Employment {
	var out Employment
	for _, q := range quadtree.Quadrants {
		e := children.Get(q).fields.Employment
		out.Workers = out.Workers.Add(e.Workers)
		out.Jobs = out.Jobs.Add(e.Jobs)
		out.WorkplaceHappiness = out.WorkplaceHappiness.Add(e.WorkplaceHappiness)
		out.CommuteDuration = out.CommuteDuration.Add(e.CommuteDuration)
	}
	return out
}
