package checkout

import (
	"context"
	"testing"

	"krishimitra/models"
)

func TestMaterializeResolvesAll(t *testing.T) {
	products := &fakeProducts{products: map[string]models.Product{
		"p1": {ProductID: "p1", ProductName: "Wheat Seed", Price: 100},
		"p2": {ProductID: "p2", ProductName: "Drip Kit", Price: 900},
	}}

	got := Materialize(context.Background(), products, []string{"p1", "p2"})

	if len(got) != 2 {
		t.Fatalf("materialized %d products, want 2", len(got))
	}
	if got[0].ProductID != "p1" || got[1].ProductID != "p2" {
		t.Fatalf("order not preserved: %v", got)
	}
}

func TestMaterializeDropsDanglingIDs(t *testing.T) {
	products := &fakeProducts{products: map[string]models.Product{
		"p1": {ProductID: "p1", Price: 100},
	}}

	got := Materialize(context.Background(), products, []string{"deleted", "p1", "also-gone"})

	if len(got) != 1 {
		t.Fatalf("materialized %d products, want 1 (dangling ids dropped)", len(got))
	}
	if got[0].ProductID != "p1" {
		t.Fatalf("got %v, want p1", got[0].ProductID)
	}
}

func TestMaterializeEmptyCart(t *testing.T) {
	products := &fakeProducts{products: map[string]models.Product{}}

	got := Materialize(context.Background(), products, nil)

	if len(got) != 0 {
		t.Fatalf("materialized %d products from empty cart", len(got))
	}
}
