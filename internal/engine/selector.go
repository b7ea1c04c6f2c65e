package engine

import (
	"fmt"

	"stress-quiz/internal/domain"
)

// SelectRounds draws total items with replacement from the resolved pool, then
// overwrites curveballs random positions with random curveball items. Positions
// may collide, so fewer than curveballs distinct curveballs can end up in play.
func SelectRounds(ds domain.Dataset, course string, difficulty domain.Difficulty, total, curveballs int, rng Rand) ([]domain.RoundItem, error) {
	if total <= 0 {
		return nil, fmt.Errorf("select rounds: total must be positive, got %d", total)
	}
	pool, err := ds.Pool(course, difficulty)
	if err != nil {
		return nil, err
	}

	rounds := make([]domain.RoundItem, total)
	for i := range rounds {
		rounds[i] = pool[rng.Intn(len(pool))]
	}

	if len(ds.Curveball) == 0 {
		return rounds, nil
	}
	for i := 0; i < curveballs; i++ {
		pos := rng.Intn(total)
		rounds[pos] = ds.Curveball[rng.Intn(len(ds.Curveball))]
	}
	return rounds, nil
}
