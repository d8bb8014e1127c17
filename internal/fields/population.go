package fields

import (
	"metrosim/internal/agent"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// Population is the residential side of a node: how many people live
// there against how much housing exists, how many of them have jobs,
// and how satisfied they are with their commute and car situation.
type Population struct {
	People             SimpleDensity   `json:"people"`
	Housing            SimpleDensity   `json:"housing"`
	EmployedPeople     uint64          `json:"employed_people"`
	WorkplaceHappiness WeightedAverage `json:"workplace_happiness"`
	CommuteDuration    WeightedAverage `json:"commute_duration"`
	CarOwnership       WeightedAverage `json:"car_ownership"`
}

// HousingSaturation is the fraction of total housing that is occupied.
// A node with no housing at all is reported as fully saturated, since
// there is no vacancy to offer.
func (p Population) HousingSaturation() float64 {
	if p.Housing.Total == 0 {
		return 1.0
	}
	return float64(p.People.Total) / float64(p.Housing.Total)
}

// HousingVacancy is the fraction of total housing that is vacant.
func (p Population) HousingVacancy() float64 {
	return 1.0 - p.HousingSaturation()
}

// EmptyHousing is the raw count of unoccupied housing units.
func (p Population) EmptyHousing() uint64 {
	if p.Housing.Total < p.People.Total {
		return 0
	}
	return p.Housing.Total - p.People.Total
}

// EmploymentRate is the fraction of residents who hold a job. A node
// with no residents is reported as fully employed, matching the
// original's choice to leave the denominator-zero case out of the
// unemployment picture entirely.
func (p Population) EmploymentRate() float64 {
	if p.People.Total == 0 {
		return 1.0
	}
	return float64(p.EmployedPeople) / float64(p.People.Total)
}

func computePopulationLeaf(t tile.Tile, width uint64, extra ComputationData) Population {
	if t.Kind != tile.Housing {
		return Population{
			People:  simpleDensityFromTotal(0, width),
			Housing: simpleDensityFromTotal(0, width),
		}
	}

	var employed uint64
	happiness := WeightedAverage{}
	commute := WeightedAverage{}
	ownership := WeightedAverage{}
	for _, id := range t.Agents {
		a := extra.agent(agent.AgentID(id))
		ownership = ownership.AddSample(boolToFloat(a.OwnsCar()))
		if a.Workplace == nil {
			continue
		}
		employed++
		happiness = happiness.AddSample(a.WorkplaceHappinessScore())
		commute = commute.AddSample(a.AverageCommuteLength(agent.CommuteToWork))
	}

	return Population{
		People:             simpleDensityFromTotal(uint64(len(t.Agents)), width),
		Housing:            simpleDensityFromTotal(uint64(t.Density), width),
		EmployedPeople:     employed,
		WorkplaceHappiness: happiness,
		CommuteDuration:    commute,
		CarOwnership:       ownership,
	}
}

func computePopulationBranch(children quadtree.QuadMap[foldResult]) Population {
	var out Population
	for _, q := range quadtree.Quadrants {
		p := children.Get(q).fields.Population
		out.People = out.People.Add(p.People)
		out.Housing = out.Housing.Add(p.Housing)
		out.EmployedPeople += p.EmployedPeople
		out.WorkplaceHappiness = out.WorkplaceHappiness.Add(p.WorkplaceHappiness)
		out.CommuteDuration = out.CommuteDuration.Add(p.CommuteDuration)
		out.CarOwnership = out.CarOwnership.Add(p.CarOwnership)
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
