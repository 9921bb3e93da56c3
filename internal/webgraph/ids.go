package webgraph

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/webgraph/internal/seedpool"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

const idAlphabet = "0123456789abcdef"

// idDrawFactor bounds the draws spent per requested id before giving up.
const idDrawFactor = 100

// synthesizeIDs draws count fresh random ids not present in taken and records them there.
func synthesizeIDs(rng *utils.RandSource, length, count int, taken map[models.PageID]bool) ([]models.PageID, error) {
	ids := make([]models.PageID, 0, count)
	maxDraws := idDrawFactor*count + 1000
	for draws := 0; len(ids) < count; draws++ {
		if draws >= maxDraws {
			return nil, fmt.Errorf("%w: %d of %d synthetic ids after %d draws", ErrIDSpaceExhausted, len(ids), count, draws)
		}
		id := models.PageID(rng.String(idAlphabet, length))
		if taken[id] {
			continue
		}
		taken[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// assembleIDs builds count fresh ids by concatenating fragments chosen uniformly
// from the short pool's buckets, so every fragment of every id is a pool output.
func assembleIDs(rng *utils.RandSource, short *seedpool.Pool, length, count int, taken map[models.PageID]bool) ([]models.PageID, error) {
	fragments := short.Outputs()
	if count > 0 && len(fragments) == 0 {
		return nil, fmt.Errorf("%w: short pool is empty", ErrIDSpaceExhausted)
	}
	ids := make([]models.PageID, 0, count)
	parts := length / short.OutputLen()
	maxDraws := idDrawFactor*count + 1000
	var sb strings.Builder
	for draws := 0; len(ids) < count; draws++ {
		if draws >= maxDraws {
			return nil, fmt.Errorf("%w: %d of %d assembled ids after %d draws", ErrIDSpaceExhausted, len(ids), count, draws)
		}
		sb.Reset()
		for i := 0; i < parts; i++ {
			sb.WriteString(utils.Choice(rng, fragments))
		}
		id := models.PageID(sb.String())
		if taken[id] {
			continue
		}
		taken[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
