package checkout

import (
	"context"
	"log"
	"sync"

	"krishimitra/models"
	"krishimitra/store"
)

// Materialize resolves cart product ids to product snapshots. All lookups
// run in parallel; an id that resolves to nothing (or fails) is logged and
// dropped from the result, never surfaced as an error or a placeholder.
func Materialize(ctx context.Context, products store.ProductStore, ids []string) []models.Product {
	results := make([]*models.Product, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			p, err := products.GetProduct(ctx, id)
			if err != nil {
				if err != store.ErrNotFound {
					log.Printf("Materialize: fetch error for product %s: %v\n", id, err)
				}
				return
			}
			results[i] = p
		}(i, id)
	}
	wg.Wait()

	out := make([]models.Product, 0, len(ids))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
