package rank

// Rank is a position in the fixed directorate hierarchy.
type Rank string

const (
	Asset    Rank = "asset"
	Shadow   Rank = "shadow"
	Marshal  Rank = "marshal"
	Executor Rank = "executor"
	Nyx      Rank = "nyx"
	Niki     Rank = "niki"
)

// Ladder lists every rank in ascending order of authority.
var Ladder = []Rank{Asset, Shadow, Marshal, Executor, Nyx, Niki}

// The top two ranks sit above the pay scale.
var basePay = map[Rank]float64{
	Asset:    3.0,
	Shadow:   4.5,
	Marshal:  6.0,
	Executor: 8.0,
	Nyx:      0.0,
	Niki:     0.0,
}

// Next returns the rank directly above r. The top rank has nothing to
// escalate to and is returned unchanged, as is any rank not on the ladder.
func Next(r Rank) Rank {
	for i, candidate := range Ladder {
		if candidate == r {
			if i+1 < len(Ladder) {
				return Ladder[i+1]
			}
			return r
		}
	}
	return r
}

// BasePay returns the base pay rate for r. Ranks above the pay scale and
// unknown ranks pay 0.
func BasePay(r Rank) float64 {
	return basePay[r]
}

// Valid reports whether r is on the ladder.
func Valid(r Rank) bool {
	_, ok := basePay[r]
	return ok
}
