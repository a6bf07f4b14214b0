package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"echomail/internal/domain"
	"echomail/internal/infra"
	"echomail/internal/sqlinline"
)

// ProfileStore persists identity profiles and their product catalogs.
// Every query is scoped by device so one device can never read or mutate
// another device's profiles.
type ProfileStore struct {
	sql infra.SQLExecutor
}

func NewProfileStore(sql infra.SQLExecutor) *ProfileStore {
	return &ProfileStore{sql: sql}
}

// Upsert inserts or replaces the profile under the given device.
func (s *ProfileStore) Upsert(ctx context.Context, deviceID string, p *domain.IdentityProfile) error {
	docs, err := json.Marshal(p.Docs)
	if err != nil {
		return fmt.Errorf("marshal docs: %w", err)
	}
	docNames, err := json.Marshal(p.DocNames)
	if err != nil {
		return fmt.Errorf("marshal doc names: %w", err)
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertProfile,
		p.ID, deviceID, p.Name, string(p.Color), p.Brand,
		p.CompanyContext, p.UseCompanyContext, string(docs), string(docNames))
	return err
}

// Get returns the profile, or domain.ErrNotFound when it does not exist
// for this device.
func (s *ProfileStore) Get(ctx context.Context, deviceID, profileID string) (*domain.IdentityProfile, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectProfileByID, profileID, deviceID)
	p, err := scanProfile(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns the device's profiles in creation order.
func (s *ProfileStore) List(ctx context.Context, deviceID string) ([]domain.IdentityProfile, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListProfilesByDevice, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IdentityProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Count returns how many profiles the device currently has.
func (s *ProfileStore) Count(ctx context.Context, deviceID string) (int, error) {
	var n int
	row := s.sql.QueryRow(ctx, sqlinline.QCountProfilesByDevice, deviceID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes the profile. Missing rows are not an error; the delete is
// idempotent.
func (s *ProfileStore) Delete(ctx context.Context, deviceID, profileID string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteProfile, profileID, deviceID)
	return err
}

// SaveCatalog replaces the profile's product catalog.
func (s *ProfileStore) SaveCatalog(ctx context.Context, profileID string, items []domain.CatalogItem) error {
	if items == nil {
		items = []domain.CatalogItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertCatalog, profileID, string(payload))
	return err
}

// Catalog returns the profile's catalog, empty when none was saved yet.
func (s *ProfileStore) Catalog(ctx context.Context, profileID string) ([]domain.CatalogItem, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectCatalog, profileID)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if infra.IsNoRows(err) {
			return []domain.CatalogItem{}, nil
		}
		return nil, err
	}
	var items []domain.CatalogItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if items == nil {
		items = []domain.CatalogItem{}
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.IdentityProfile, error) {
	var (
		p          domain.IdentityProfile
		deviceID   string
		color      string
		docsRaw    []byte
		docNameRaw []byte
	)
	if err := row.Scan(&p.ID, &deviceID, &p.Name, &color, &p.Brand,
		&p.CompanyContext, &p.UseCompanyContext, &docsRaw, &docNameRaw,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Color = domain.NormalizeColor(color)
	if err := json.Unmarshal(docsRaw, &p.Docs); err != nil {
		return nil, fmt.Errorf("decode docs: %w", err)
	}
	if err := json.Unmarshal(docNameRaw, &p.DocNames); err != nil {
		return nil, fmt.Errorf("decode doc names: %w", err)
	}
	return &p, nil
}
