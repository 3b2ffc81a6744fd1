package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"bitbucket.org/mmdatafocus/inventory_backend/models"
)

type productReader struct {
	fetch func(ctx context.Context, ids []int) ([]*models.Product, error)
}

func (r *productReader) getProducts(ctx context.Context, ids []int) []*dataloader.Result[*models.Product] {
	results, err := r.fetch(ctx, ids)
	if err != nil {
		return handleError[*models.Product](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

var fetchProduct = models.GetProduct

// GetProduct batches through the request's loaders. Outside a request it
// falls back to the cached single read.
func GetProduct(ctx context.Context, id int) (*models.Product, error) {
	loaders := For(ctx)
	if loaders == nil {
		return fetchProduct(ctx, id)
	}
	return loaders.productLoader.Load(ctx, id)()
}
