//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCart_FreshSessionIsEmpty(t *testing.T) {
	resp := doGet(t, "/api/cart/it-fresh-session")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c := decodeJSON[cartResponse](t, resp)
	if len(c.Selections) != 0 {
		t.Errorf("selections: got %d, want 0", len(c.Selections))
	}
}

func TestCart_PutGetDelete(t *testing.T) {
	put := map[string]any{
		"selections": []cartSelection{
			{ProductID: "el_001", Quantity: 2},
			{ProductID: "fa_001", Quantity: 1},
		},
	}
	resp := doPut(t, "/api/cart/it-session-1", put)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/cart/it-session-1")
	c := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Selections) != 2 {
		t.Fatalf("selections: got %d, want 2", len(c.Selections))
	}
	if c.Selections[0].ProductID != "el_001" || c.Selections[0].Quantity != 2 {
		t.Errorf("first selection: %+v", c.Selections[0])
	}

	// PUT replaces wholesale.
	resp = doPut(t, "/api/cart/it-session-1", map[string]any{
		"selections": []cartSelection{{ProductID: "fa_001", Quantity: 5}},
	})
	resp.Body.Close()
	resp = doGet(t, "/api/cart/it-session-1")
	c = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Selections) != 1 || c.Selections[0].Quantity != 5 {
		t.Errorf("after replace: %+v", c.Selections)
	}

	resp = doDelete(t, "/api/cart/it-session-1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/cart/it-session-1")
	defer resp.Body.Close()
	c = decodeJSON[cartResponse](t, resp)
	if len(c.Selections) != 0 {
		t.Errorf("after clear: got %d selections, want 0", len(c.Selections))
	}
}

func TestCart_SessionsIsolated(t *testing.T) {
	resp := doPut(t, "/api/cart/it-session-a", map[string]any{
		"selections": []cartSelection{{ProductID: "el_001", Quantity: 1}},
	})
	resp.Body.Close()

	resp = doGet(t, "/api/cart/it-session-b")
	defer resp.Body.Close()
	c := decodeJSON[cartResponse](t, resp)
	if len(c.Selections) != 0 {
		t.Errorf("session b: got %d selections, want 0", len(c.Selections))
	}
}
