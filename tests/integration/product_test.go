//go:build integration

package integration

import (
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProductCount {
		t.Fatalf("products: got %d, want %d", len(products), seededProductCount)
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/el_001")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.Name != "Noisefit Pulse Wireless Earbuds" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Price != 1999 {
		t.Errorf("price: got %v, want 1999", p.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/does-not-exist")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d", body.Code)
	}
}

func TestProductCRUD(t *testing.T) {
	create := map[string]any{
		"name":        "Test Desk Lamp",
		"description": "LED desk lamp with three brightness levels",
		"price":       1299,
		"category":    "electronics",
		"inStock":     10,
	}
	resp := doPost(t, "/api/products", create)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if created.ID == "" {
		t.Fatal("created product has no ID")
	}
	if created.OriginalPrice != 1299 {
		t.Errorf("originalPrice should default to price, got %v", created.OriginalPrice)
	}

	update := map[string]any{
		"name":        "Test Desk Lamp v2",
		"description": "LED desk lamp with five brightness levels",
		"price":       1499,
		"category":    "electronics",
		"inStock":     8,
	}
	resp = doPut(t, "/api/products/"+created.ID, update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[productResponse](t, resp)
	resp.Body.Close()
	if updated.Name != "Test Desk Lamp v2" || updated.Price != 1499 {
		t.Errorf("update not applied: %+v", updated)
	}

	resp = doDelete(t, "/api/products/"+created.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/products/" + created.ID)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{"price": -1})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if len(body.Fields) == 0 {
		t.Error("expected offending fields in validation error")
	}
}

func TestAddReview_RecomputesAggregate(t *testing.T) {
	// Fresh product so other tests cannot skew the aggregate.
	resp := doPost(t, "/api/products", map[string]any{
		"name":        "Review Target",
		"description": "product used by the review test",
		"price":       500,
		"category":    "electronics",
		"inStock":     5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	p := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	ratings := []int{4, 5, 3}
	var last productResponse
	for i, rating := range ratings {
		resp = doPost(t, "/api/products/"+p.ID+"/reviews", map[string]any{
			"user":    fmt.Sprintf("reviewer-%d", i),
			"rating":  rating,
			"comment": "integration review",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("review %d: expected 201, got %d", i, resp.StatusCode)
		}
		last = decodeJSON[productResponse](t, resp)
		resp.Body.Close()
	}

	if last.ReviewCount != 3 {
		t.Errorf("reviewCount: got %d, want 3", last.ReviewCount)
	}
	if math.Abs(last.Rating-4.0) > 1e-9 {
		t.Errorf("rating: got %v, want 4.0", last.Rating)
	}
}

func TestDecrementStock_Clamp(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"name":        "Stock Target",
		"description": "product used by the stock test",
		"price":       300,
		"category":    "fashion",
		"inStock":     3,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	p := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	resp = doPut(t, "/api/products/"+p.ID+"/stock", map[string]any{"quantity": 10})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	out := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if out.InStock != 0 {
		t.Errorf("inStock: got %d, want 0 (clamped)", out.InStock)
	}
}

func TestAddReview_DateAssigned(t *testing.T) {
	resp := doPost(t, "/api/products/el_002/reviews", map[string]any{
		"user":    "date-checker",
		"rating":  5,
		"comment": "checking the review date",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	// The product detail should include the new review.
	resp2 := doGet(t, "/api/products/el_002")
	defer resp2.Body.Close()
	p := decodeJSON[struct {
		Reviews []struct {
			User string    `json:"user"`
			Date time.Time `json:"date"`
		} `json:"reviews"`
	}](t, resp2)

	found := false
	for _, rv := range p.Reviews {
		if rv.User == "date-checker" {
			found = true
			if rv.Date.IsZero() {
				t.Error("review date not assigned")
			}
		}
	}
	if !found {
		t.Error("new review not present on product detail")
	}
}
