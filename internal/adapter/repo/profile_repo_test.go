package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"echomail/internal/domain"
	"echomail/internal/sqlinline"
)

type profileExecutor struct {
	catalogs map[string]string // profileID -> json
	profiles map[string][]any  // profileID -> upsert args
}

func newProfileExecutor() *profileExecutor {
	return &profileExecutor{catalogs: map[string]string{}, profiles: map[string][]any{}}
}

func (m *profileExecutor) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch sql {
	case sqlinline.QUpsertCatalog:
		m.catalogs[args[0].(string)] = args[1].(string)
	case sqlinline.QUpsertProfile:
		m.profiles[args[0].(string)] = args
	case sqlinline.QDeleteProfile:
		delete(m.profiles, args[0].(string))
	}
	return pgconn.CommandTag{}, nil
}

func (m *profileExecutor) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch sql {
	case sqlinline.QSelectCatalog:
		raw, ok := m.catalogs[args[0].(string)]
		if !ok {
			return memRow{err: pgx.ErrNoRows}
		}
		return bytesRow{value: []byte(raw)}
	case sqlinline.QSelectProfileByID:
		stored, ok := m.profiles[args[0].(string)]
		if !ok {
			return memRow{err: pgx.ErrNoRows}
		}
		return profileRow{args: stored}
	case sqlinline.QCountProfilesByDevice:
		return countRow{n: len(m.profiles)}
	}
	return memRow{err: pgx.ErrNoRows}
}

func (m *profileExecutor) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type bytesRow struct{ value []byte }

func (r bytesRow) Scan(dest ...any) error {
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type countRow struct{ n int }

func (r countRow) Scan(dest ...any) error {
	*(dest[0].(*int)) = r.n
	return nil
}

type profileRow struct{ args []any }

func (r profileRow) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.args[0].(string)              // id
	*(dest[1].(*string)) = r.args[1].(string)              // device_id
	*(dest[2].(*string)) = r.args[2].(string)              // name
	*(dest[3].(*string)) = r.args[3].(string)              // color
	*(dest[4].(*string)) = r.args[4].(string)              // brand
	*(dest[5].(*string)) = r.args[5].(string)              // company_context
	*(dest[6].(*bool)) = r.args[6].(bool)                  // use_company_context
	*(dest[7].(*[]byte)) = []byte(r.args[7].(string))      // docs
	*(dest[8].(*[]byte)) = []byte(r.args[8].(string))      // doc_names
	*(dest[9].(*time.Time)) = time.Unix(0, 0).UTC()        // created_at
	*(dest[10].(*time.Time)) = time.Unix(0, 0).UTC()       // updated_at
	return nil
}

func TestProfileStoreUpsertAndGet(t *testing.T) {
	store := NewProfileStore(newProfileExecutor())
	ctx := context.Background()

	in := &domain.IdentityProfile{
		ID:       "3e0f8f8c-2f47-4f8f-9f4e-2a8b40f1a001",
		Name:     "Panadería Sol",
		Color:    domain.ColorEmerald,
		Brand:    "Sol",
		Docs:     []string{"somos una panadería artesanal", ""},
		DocNames: []string{"voz.md", ""},
	}
	if err := store.Upsert(ctx, "dev-1", in); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, "dev-1", in.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != in.Name || got.Color != domain.ColorEmerald {
		t.Fatalf("unexpected profile %+v", got)
	}
	if len(got.Docs) != 2 || got.Docs[0] != in.Docs[0] {
		t.Fatalf("docs did not round-trip: %+v", got.Docs)
	}
}

func TestProfileStoreGetMissingIsNotFound(t *testing.T) {
	store := NewProfileStore(newProfileExecutor())
	if _, err := store.Get(context.Background(), "dev-1", "nope"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileStoreCatalogDefaultsToEmpty(t *testing.T) {
	store := NewProfileStore(newProfileExecutor())
	items, err := store.Catalog(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty catalog, got %v", items)
	}
}

func TestProfileStoreCatalogRoundTrip(t *testing.T) {
	store := NewProfileStore(newProfileExecutor())
	ctx := context.Background()

	in := []domain.CatalogItem{{ID: "c1", Name: "Croissant", Price: "2.50"}}
	if err := store.SaveCatalog(ctx, "p-1", in); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	got, err := store.Catalog(ctx, "p-1")
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Croissant" {
		t.Fatalf("catalog did not round-trip: %+v", got)
	}
}
