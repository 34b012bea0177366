package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/cityhealth/directory/internal/db/memory"
	"github.com/cityhealth/directory/internal/domain"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/repository/pagecache"
	providerrepo "github.com/cityhealth/directory/internal/repository/provider"
)

// newDirectoryService wires the search service over the in-memory store,
// the provider repository and the page cache.
func newDirectoryService(t *testing.T, providers []domprov.Provider) *Service {
	t.Helper()
	store := memory.NewStore()
	repo := providerrepo.New(store)
	for i := range providers {
		if err := repo.Save(context.Background(), &providers[i]); err != nil {
			t.Fatalf("save %s: %v", providers[i].ID, err)
		}
	}
	cfg := domain.DefaultSearchConfig()
	cache := pagecache.New(store, cfg.CacheTTL, cfg.CursorTTL, nil, nil)
	return New(repo, cache, nil, cfg, nil)
}

func clinic(id, nameEn, specialtyEn, city string, rating float64) domprov.Provider {
	return domprov.Provider{
		ID:        id,
		Name:      domprov.LocalizedText{En: nameEn},
		Specialty: domprov.LocalizedText{En: specialtyEn},
		Category:  domprov.Clinic,
		Address:   domprov.Address{City: city},
		Verified:  true,
		Rating:    rating,
	}
}

func TestSearch_Directory_SpecialtyInCity(t *testing.T) {
	const city = "Sidi Bel Abbès"
	unverified := clinic("cardio-unverified", "Clinique du Coeur", "Cardiology", city, 5)
	unverified.Verified = false
	svc := newDirectoryService(t, []domprov.Provider{
		clinic("card", "Clinique El Amel", "Cardiology", city, 4),
		clinic("derm", "Clinique Ibn Sina", "Dermatology", city, 4.5),
		clinic("card-oran", "Clinique Oran", "Cardiology", "Oran", 5),
		unverified,
	})

	page, err := svc.Search(context.Background(), newReq(t, request.Params{
		Query:    "cardiology",
		Location: city,
		Page:     1,
	}))
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	ids := page.IDs()
	if len(ids) != 1 || ids[0] != "card" {
		t.Fatalf("ids = %v, want [card]", ids)
	}
	if page.HasMore {
		t.Error("expected no further pages")
	}
}

func TestSearch_Directory_NoTextKeepsVerifiedOnly(t *testing.T) {
	unverified := clinic("hidden", "Clinique X", "General", "Oran", 5)
	unverified.Verified = false
	svc := newDirectoryService(t, []domprov.Provider{
		clinic("a", "Clinique A", "General", "Oran", 3),
		clinic("b", "Clinique B", "General", "Alger", 4),
		unverified,
	})

	page, err := svc.Search(context.Background(), newReq(t, request.Params{Page: 1}))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, p := range page.Providers {
		if !p.Verified {
			t.Errorf("unverified provider %s returned", p.ID)
		}
	}
	if ids := page.IDs(); len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Errorf("ids = %v, want [b a] by rating", ids)
	}
}

func equalRatedDirectory(n int) []domprov.Provider {
	out := make([]domprov.Provider, n)
	for i := range out {
		out[i] = clinic(fmt.Sprintf("p%02d", i), fmt.Sprintf("Clinique %d", i), "General", "Oran", 4)
	}
	return out
}

func TestSearch_Directory_CursorWalkWithEqualRatings(t *testing.T) {
	svc := newDirectoryService(t, equalRatedDirectory(47))
	ctx := context.Background()

	seen := make(map[string]int)
	var sizes []int
	cursor := ""
	for n := 1; ; n++ {
		page, err := svc.Search(ctx, newReq(t, request.Params{Page: n, Cursor: cursor}))
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		sizes = append(sizes, page.Len())
		for _, id := range page.IDs() {
			if prev, dup := seen[id]; dup {
				t.Fatalf("%s on page %d and page %d", id, prev, n)
			}
			seen[id] = n
		}
		if !page.HasMore {
			break
		}
		if page.NextCursor == "" {
			t.Fatalf("page %d: HasMore without NextCursor", n)
		}
		cursor = page.NextCursor
		if n > 5 {
			t.Fatal("walk did not terminate")
		}
	}

	if fmt.Sprint(sizes) != "[20 20 7]" {
		t.Errorf("page sizes = %v, want [20 20 7]", sizes)
	}
	if len(seen) != 47 {
		t.Errorf("distinct providers = %d, want 47", len(seen))
	}
}

func TestSearch_Directory_ColdPageMatchesSequentialWalk(t *testing.T) {
	ctx := context.Background()

	sequential := newDirectoryService(t, equalRatedDirectory(47))
	var want []string
	for n := 1; n <= 3; n++ {
		page, err := sequential.Search(ctx, newReq(t, request.Params{Page: n}))
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		if n == 3 {
			want = page.IDs()
		}
	}

	cold := newDirectoryService(t, equalRatedDirectory(47))
	page, err := cold.Search(ctx, newReq(t, request.Params{Page: 3}))
	if err != nil {
		t.Fatalf("cold page 3: %v", err)
	}
	if fmt.Sprint(page.IDs()) != fmt.Sprint(want) {
		t.Errorf("cold page 3 = %v, want %v", page.IDs(), want)
	}
}
