package catalog_test

import (
	"testing"

	"questline/internal/catalog"
	"questline/internal/domain"
)

func TestLookup(t *testing.T) {
	c := catalog.New([]domain.Objective{
		{ID: 7, Title: "seven", States: []domain.ObjectiveState{{ID: 0, Type: domain.StateActive}}},
		{ID: 2, Title: "two", States: []domain.ObjectiveState{{ID: 3, Type: domain.StateComplete}}},
	})
	o, ok := c.Objective(7)
	if !ok || o.Title != "seven" {
		t.Fatalf("lookup 7: %v %v", o, ok)
	}
	if _, ok := c.Objective(1); ok {
		t.Fatalf("unexpected objective 1")
	}
	s, ok := c.State(2, 3)
	if !ok || s.Type != domain.StateComplete {
		t.Fatalf("state lookup: %v %v", s, ok)
	}
	if _, ok := c.State(2, 0); ok {
		t.Fatalf("unexpected state 0 for objective 2")
	}
	list := c.List()
	if len(list) != 2 || list[0].ID != 2 || list[1].ID != 7 {
		t.Fatalf("list order: %+v", list)
	}
}

func TestNilCatalog(t *testing.T) {
	var c *catalog.Catalog
	if _, ok := c.Objective(1); ok {
		t.Fatalf("nil catalog resolved objective")
	}
	if c.List() != nil {
		t.Fatalf("nil catalog listed objectives")
	}
}
