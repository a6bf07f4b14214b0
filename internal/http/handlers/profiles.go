package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"echomail/internal/access"
	"echomail/internal/domain"
	"echomail/pkg/zip"
)

type profileRequest struct {
	Name              string   `json:"name"`
	Color             string   `json:"color"`
	Brand             string   `json:"brand"`
	CompanyContext    string   `json:"company_context"`
	UseCompanyContext bool     `json:"use_company_context"`
	Docs              []string `json:"docs"`
	DocNames          []string `json:"doc_names"`
}

// ListProfiles returns the device's profiles with doc slots clamped to
// the current tier, so a downgraded device sees extra slots disappear
// without losing the stored content.
func (a *App) ListProfiles(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	profiles, err := a.Profiles.List(r.Context(), deviceID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("profile list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list profiles")
		return
	}
	slots := access.MaxIdentityDocSlots(a.Engine.EffectiveTier(r.Context(), deviceID))
	for i := range profiles {
		profiles[i].ClampDocs(slots)
	}
	if profiles == nil {
		profiles = []domain.IdentityProfile{}
	}
	a.json(w, http.StatusOK, profiles)
}

// CreateProfile adds a profile, enforcing the per-tier concurrent
// profile cap.
func (a *App) CreateProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name required")
		return
	}
	ctx := r.Context()
	tier := a.Engine.EffectiveTier(ctx, deviceID)
	count, err := a.Profiles.Count(ctx, deviceID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("profile count failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to count profiles")
		return
	}
	if count >= a.Cfg.ProfileSlots(!tier.CanAccessPro()) {
		a.error(w, http.StatusForbidden, "profile_limit", "profile limit reached for current tier")
		return
	}
	profile := profileFromRequest(req, tier)
	profile.ID = uuid.NewString()
	if err := a.Profiles.Upsert(ctx, deviceID, profile); err != nil {
		a.Logger.Error().Err(err).Msg("profile create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create profile")
		return
	}
	a.json(w, http.StatusCreated, profile)
}

// GetProfile returns one profile.
func (a *App) GetProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	profile, ok := a.loadProfile(w, r, deviceID)
	if !ok {
		return
	}
	profile.ClampDocs(access.MaxIdentityDocSlots(a.Engine.EffectiveTier(r.Context(), deviceID)))
	a.json(w, http.StatusOK, profile)
}

// UpdateProfile replaces an existing profile's content.
func (a *App) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	existing, ok := a.loadProfile(w, r, deviceID)
	if !ok {
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name required")
		return
	}
	tier := a.Engine.EffectiveTier(r.Context(), deviceID)
	updated := profileFromRequest(req, tier)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := a.Profiles.Upsert(r.Context(), deviceID, updated); err != nil {
		a.Logger.Error().Err(err).Msg("profile update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update profile")
		return
	}
	a.json(w, http.StatusOK, updated)
}

// DeleteProfile removes a profile and is idempotent.
func (a *App) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	profileID := chi.URLParam(r, "id")
	if err := a.Profiles.Delete(r.Context(), deviceID, profileID); err != nil {
		a.Logger.Error().Err(err).Msg("profile delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete profile")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ExportProfile bundles the profile's voice documents, context and
// catalog into a downloadable zip.
func (a *App) ExportProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	profile, ok := a.loadProfile(w, r, deviceID)
	if !ok {
		return
	}
	catalog, err := a.Profiles.Catalog(r.Context(), profile.ID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("catalog read failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read catalog")
		return
	}

	meta, _ := json.MarshalIndent(profile, "", "  ")
	files := []zip.File{{Name: "profile.json", Data: meta}}
	for i, doc := range profile.Docs {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		name := ""
		if i < len(profile.DocNames) {
			name = strings.TrimSpace(profile.DocNames[i])
		}
		if name == "" {
			name = fmt.Sprintf("doc-%d.md", i+1)
		}
		files = append(files, zip.File{Name: "docs/" + name, Data: []byte(doc)})
	}
	if len(catalog) > 0 {
		files = append(files, zip.File{Name: "catalog.csv", Data: catalogCSV(catalog)})
	}

	archive := zip.Archive(files)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(profile.Name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// Catalog returns the profile's product catalog. The catalog is a pro
// feature; visibility follows the effective tier, not the usage gate.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	if !a.Engine.CanAccessPro(r.Context(), deviceID) {
		a.error(w, http.StatusForbidden, "pro_required", "catalog requires a pro tier")
		return
	}
	profile, ok := a.loadProfile(w, r, deviceID)
	if !ok {
		return
	}
	items, err := a.Profiles.Catalog(r.Context(), profile.ID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("catalog read failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read catalog")
		return
	}
	a.json(w, http.StatusOK, items)
}

// SaveCatalog replaces the profile's product catalog.
func (a *App) SaveCatalog(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	if !a.Engine.CanAccessPro(r.Context(), deviceID) {
		a.error(w, http.StatusForbidden, "pro_required", "catalog requires a pro tier")
		return
	}
	profile, ok := a.loadProfile(w, r, deviceID)
	if !ok {
		return
	}
	var items []domain.CatalogItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	if err := a.Profiles.SaveCatalog(r.Context(), profile.ID, items); err != nil {
		a.Logger.Error().Err(err).Msg("catalog write failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save catalog")
		return
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) loadProfile(w http.ResponseWriter, r *http.Request, deviceID string) (*domain.IdentityProfile, bool) {
	profileID := chi.URLParam(r, "id")
	profile, err := a.Profiles.Get(r.Context(), deviceID, profileID)
	if err != nil {
		if err == domain.ErrNotFound {
			a.error(w, http.StatusNotFound, "not_found", "profile not found")
		} else {
			a.Logger.Error().Err(err).Msg("profile read failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to read profile")
		}
		return nil, false
	}
	return profile, true
}

func profileFromRequest(req profileRequest, tier domain.Tier) *domain.IdentityProfile {
	now := time.Now().UTC()
	p := &domain.IdentityProfile{
		Name:              strings.TrimSpace(req.Name),
		Color:             domain.NormalizeColor(req.Color),
		Brand:             strings.TrimSpace(req.Brand),
		CompanyContext:    strings.TrimSpace(req.CompanyContext),
		UseCompanyContext: req.UseCompanyContext,
		Docs:              req.Docs,
		DocNames:          req.DocNames,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	p.ClampDocs(access.MaxIdentityDocSlots(tier))
	return p
}

func catalogCSV(items []domain.CatalogItem) []byte {
	var sb strings.Builder
	cw := csv.NewWriter(&sb)
	_ = cw.Write([]string{"name", "description", "price"})
	for _, item := range items {
		_ = cw.Write([]string{item.Name, item.Description, item.Price})
	}
	cw.Flush()
	return []byte(sb.String())
}

func exportFileName(profileName string) string {
	name := strings.TrimSpace(strings.ToLower(profileName))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, name)
	if name == "" {
		name = "profile"
	}
	return name + "-export.zip"
}
