package service

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// CatalogProduct is a billing-provider product eligible to become a plan.
type CatalogProduct struct {
	Key  string
	Name string
}

// ProductCatalog lists the active products of the upstream billing provider.
type ProductCatalog interface {
	ListActiveProducts(ctx context.Context) ([]CatalogProduct, error)
}

type stripeCatalog struct {
	api *client.API
}

// NewStripeCatalog builds a catalog over the Stripe products API.
func NewStripeCatalog(secretKey string) ProductCatalog {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeCatalog{api: api}
}

func (c *stripeCatalog) ListActiveProducts(ctx context.Context) ([]CatalogProduct, error) {
	params := &stripe.ProductListParams{Active: stripe.Bool(true)}
	params.Context = ctx

	var products []CatalogProduct
	iter := c.api.Products.List(params)
	for iter.Next() {
		p := iter.Product()

		// Products opt into the plan catalog through metadata; unmarked
		// products fall back to their Stripe ID as the plan key.
		key := p.Metadata["plan_key"]
		if key == "" {
			key = p.ID
		}
		products = append(products, CatalogProduct{Key: key, Name: p.Name})
	}
	return products, iter.Err()
}
