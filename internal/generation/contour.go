package generation

import "math/rand/v2"

// Transition is a weighted next-interval outcome
type Transition struct {
	Interval int
	Weight   float64
}

// TransitionTable maps the previous melodic interval (semitones) to its outcomes
type TransitionTable map[int][]Transition

// DefaultTransitions favours stepwise motion and turning back after a step
var DefaultTransitions = TransitionTable{
	0:  {{0, 0.2}, {2, 0.4}, {-2, 0.4}},
	2:  {{2, 0.3}, {0, 0.2}, {-1, 0.3}, {-2, 0.2}},
	-2: {{-2, 0.3}, {0, 0.2}, {1, 0.3}, {2, 0.2}},
	1:  {{2, 0.4}, {0, 0.2}, {-1, 0.4}},
	-1: {{-2, 0.4}, {0, 0.2}, {1, 0.4}},
}

// ContourModel proposes the next melodic interval from the previous one.
// It holds no running state; callers pass the interval they last took.
type ContourModel struct {
	table TransitionTable
	src   rand.Source
}

// NewContourModel creates a model over table (DefaultTransitions when nil)
func NewContourModel(table TransitionTable, src rand.Source) *ContourModel {
	if table == nil {
		table = DefaultTransitions
	}
	return &ContourModel{table: table, src: src}
}

// NextInterval samples the interval to take after previous. Unknown intervals
// use the entry for 0; without that entry the model does not move.
func (m *ContourModel) NextInterval(previous int) int {
	outcomes, ok := m.table[previous]
	if !ok {
		outcomes = m.table[0]
	}
	if len(outcomes) == 0 {
		return 0
	}

	weights := make([]float64, len(outcomes))
	for i, o := range outcomes {
		weights[i] = o.Weight
	}
	return outcomes[sample(weights, m.src)].Interval
}
