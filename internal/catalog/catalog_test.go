package catalog

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultCatalogKeepsInsertionOrder(t *testing.T) {
	c := MustDefault()

	got := c.List()
	if len(got) != 4 {
		t.Fatalf("expected 4 services, got %d", len(got))
	}
	wantIDs := []int64{1, 2, 3, 4}
	for i, svc := range got {
		if svc.ID != wantIDs[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, wantIDs[i], svc.ID)
		}
	}
	if got[0].Title != "이력서 첨삭" || got[0].Cost != 200 {
		t.Fatalf("unexpected first service: %+v", got[0])
	}
}

func TestListIsIdempotentAndDetached(t *testing.T) {
	c := MustDefault()

	first := c.List()
	first[0].Title = "mutated"
	second := c.List()
	third := c.List()

	if second[0].Title != "이력서 첨삭" {
		t.Fatalf("expected catalog unchanged by caller mutation, got %q", second[0].Title)
	}
	if !reflect.DeepEqual(second, third) {
		t.Fatalf("expected identical results across calls")
	}
}

func TestGetUnknownService(t *testing.T) {
	c := MustDefault()

	if _, err := c.Get(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	svc, err := c.Get(3)
	if err != nil {
		t.Fatalf("get service 3: %v", err)
	}
	if svc.Title != "합격 예측" || svc.Cost != 150 {
		t.Fatalf("unexpected service 3: %+v", svc)
	}
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	cases := map[string][]Service{
		"zero id":      {{ID: 0, Title: "a", Cost: 1}},
		"empty title":  {{ID: 1, Title: "  ", Cost: 1}},
		"zero cost":    {{ID: 1, Title: "a", Cost: 0}},
		"negative":     {{ID: 1, Title: "a", Cost: -5}},
		"duplicate id": {{ID: 1, Title: "a", Cost: 1}, {ID: 1, Title: "b", Cost: 2}},
	}
	for name, services := range cases {
		if _, err := New(services); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
