package snapfx

// DefaultMaxBatchesPerFlush bounds how many batches a single Flush may run.
// Every batch after the first exists only because effects or renders wrote
// state again, so a long chain almost always means a write loop.
const DefaultMaxBatchesPerFlush = 100

// stormBudget tracks batch usage for the current flush.
type stormBudget struct {
	maxBatches int
	batches    int
}

func (b *stormBudget) reset() {
	b.batches = 0
}

// checkBatch reserves one more batch. It returns ErrRenderStorm when the
// budget is used up.
func (b *stormBudget) checkBatch() error {
	if b.maxBatches > 0 && b.batches >= b.maxBatches {
		return ErrRenderStorm
	}
	b.batches++
	return nil
}
