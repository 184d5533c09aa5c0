/*
 * Copyright 2024 CMS-Fleet
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync_hdl

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"github.com/CMS-Fleet/cms-update-manager/handler/catalog_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/scoring_hdl"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"testing"
	"time"
)

func newTestHandler(t *testing.T, stgHdlMock *storageHandlerMock) *Handler {
	t.Helper()
	scoringHdl, err := scoring_hdl.New(25, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	catalogHdl := catalog_hdl.New(stgHdlMock, time.Second, 128, 64)
	return New(stgHdlMock, catalogHdl, scoringHdl, time.Second, 512)
}

func newStorageMock() *storageHandlerMock {
	m := &storageHandlerMock{
		Modules:     make(map[string]lib_model.Module),
		Versions:    make(map[string][]lib_model.ModuleVersion),
		Sites:       make(map[string]lib_model.Site),
		SiteModules: make(map[string]map[string]lib_model.SiteModule),
	}
	m.Sites["site-1"] = lib_model.Site{ID: "site-1", URL: "https://a.example.org", Name: "Site A", Score: 100}
	return m
}

func seedCatalog(m *storageHandlerMock) {
	timestamp := time.Now().UTC()
	m.Modules["webform"] = lib_model.Module{Name: "webform", DisplayName: "Webform", Category: lib_model.ModuleContrib, Added: timestamp}
	m.Modules["pathauto"] = lib_model.Module{Name: "pathauto", DisplayName: "Pathauto", Category: lib_model.ModuleContrib, Added: timestamp}
	m.Versions["webform"] = []lib_model.ModuleVersion{
		{ID: "wf-1", Module: "webform", Version: "6.1.0"},
		{ID: "wf-2", Module: "webform", Version: "6.1.5", Security: true},
		{ID: "wf-3", Module: "webform", Version: "6.2.0"},
	}
	m.Versions["pathauto"] = []lib_model.ModuleVersion{
		{ID: "pa-1", Module: "pathauto", Version: "1.11.0"},
		{ID: "pa-2", Module: "pathauto", Version: "1.12.0"},
	}
}

func testManifest(webformVer, pathautoVer string) lib_model.Manifest {
	return lib_model.Manifest{
		Platform:        "drupal",
		PlatformVersion: "10.2.1",
		Modules: []lib_model.ModuleReport{
			{Name: "webform", DisplayName: "Webform", Category: lib_model.ModuleContrib, Version: webformVer, Enabled: true},
			{Name: "pathauto", DisplayName: "Pathauto", Category: lib_model.ModuleContrib, Version: pathautoVer, Enabled: true},
		},
	}
}

func TestHandler_Sync(t *testing.T) {
	stgHdlMock := newStorageMock()
	seedCatalog(stgHdlMock)
	h := newTestHandler(t, stgHdlMock)
	timestamp := time.Now().UTC()
	result, err := h.Sync(context.Background(), "site-1", testManifest("6.1.0", "1.11.0"), false, timestamp)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Changed {
		t.Error("expected changed")
	}
	if result.ModulesUpdated != 0 {
		t.Errorf("expected 0 updated modules but got %d", result.ModulesUpdated)
	}
	if result.SecurityPatchesApplied != 0 {
		t.Errorf("expected 0 security patches but got %d", result.SecurityPatchesApplied)
	}
	siteModules := stgHdlMock.SiteModules["site-1"]
	if len(siteModules) != 2 {
		t.Fatalf("expected 2 site modules but got %d", len(siteModules))
	}
	wf := siteModules["webform"]
	if !wf.UpdateAvailable || !wf.SecUpdateAvailable {
		t.Errorf("expected security update pending, got %+v", wf)
	}
	pa := siteModules["pathauto"]
	if !pa.UpdateAvailable || pa.SecUpdateAvailable {
		t.Errorf("expected non-security update pending, got %+v", pa)
	}
	site := stgHdlMock.Sites["site-1"]
	if site.ModuleCount != 2 || site.UpdateCount != 2 || site.SecurityUpdateCount != 1 {
		t.Errorf("unexpected site counters: %+v", site)
	}
	if site.Score != 70 {
		t.Errorf("expected score 70 but got %d", site.Score)
	}
	if len(stgHdlMock.PatchRuns) != 1 {
		t.Errorf("expected 1 patch run but got %d", len(stgHdlMock.PatchRuns))
	}
	t.Run("idempotent resubmission", func(t *testing.T) {
		result, err = h.Sync(context.Background(), "site-1", testManifest("6.1.0", "1.11.0"), false, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if result.Changed {
			t.Error("expected unchanged")
		}
		if len(stgHdlMock.PatchRuns) != 1 {
			t.Errorf("expected 1 patch run but got %d", len(stgHdlMock.PatchRuns))
		}
	})
	t.Run("security patch applied", func(t *testing.T) {
		result, err = h.Sync(context.Background(), "site-1", testManifest("6.1.5", "1.11.0"), false, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if !result.Changed {
			t.Error("expected changed")
		}
		if result.ModulesUpdated != 1 {
			t.Errorf("expected 1 updated module but got %d", result.ModulesUpdated)
		}
		if result.SecurityPatchesApplied != 1 {
			t.Errorf("expected 1 security patch but got %d", result.SecurityPatchesApplied)
		}
		wf = stgHdlMock.SiteModules["site-1"]["webform"]
		if !wf.UpdateAvailable || wf.SecUpdateAvailable {
			t.Errorf("expected only non-security update pending, got %+v", wf)
		}
		site = stgHdlMock.Sites["site-1"]
		if site.Score != 90 {
			t.Errorf("expected score 90 but got %d", site.Score)
		}
		if len(stgHdlMock.PatchRuns) != 2 {
			t.Errorf("expected 2 patch runs but got %d", len(stgHdlMock.PatchRuns))
		}
		last := stgHdlMock.PatchRuns[len(stgHdlMock.PatchRuns)-1]
		if last.ModulesUpdated != 1 || last.SecurityPatches != 1 {
			t.Errorf("unexpected patch run: %+v", last)
		}
	})
	t.Run("module removed", func(t *testing.T) {
		manifest := testManifest("6.1.5", "1.11.0")
		manifest.Modules = manifest.Modules[:1]
		result, err = h.Sync(context.Background(), "site-1", manifest, false, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if !result.Changed {
			t.Error("expected changed")
		}
		if len(stgHdlMock.SiteModules["site-1"]) != 1 {
			t.Errorf("expected 1 site module but got %d", len(stgHdlMock.SiteModules["site-1"]))
		}
		site = stgHdlMock.Sites["site-1"]
		if site.ModuleCount != 1 || site.SecurityUpdateCount != 0 {
			t.Errorf("unexpected site counters: %+v", site)
		}
		if site.Score != 95 {
			t.Errorf("expected score 95 but got %d", site.Score)
		}
	})
}

func TestHandler_SyncEmptyManifest(t *testing.T) {
	stgHdlMock := newStorageMock()
	seedCatalog(stgHdlMock)
	h := newTestHandler(t, stgHdlMock)
	if _, err := h.Sync(context.Background(), "site-1", testManifest("6.1.0", "1.11.0"), false, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	result, err := h.Sync(context.Background(), "site-1", lib_model.Manifest{Platform: "drupal"}, false, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Changed {
		t.Error("expected changed")
	}
	if len(stgHdlMock.SiteModules["site-1"]) != 0 {
		t.Errorf("expected empty inventory but got %d modules", len(stgHdlMock.SiteModules["site-1"]))
	}
	site := stgHdlMock.Sites["site-1"]
	if site.ModuleCount != 0 || site.UpdateCount != 0 || site.Score != 100 {
		t.Errorf("unexpected site state: %+v", site)
	}
}

func TestHandler_SyncValidation(t *testing.T) {
	stgHdlMock := newStorageMock()
	seedCatalog(stgHdlMock)
	h := newTestHandler(t, stgHdlMock)
	t.Run("duplicate module", func(t *testing.T) {
		manifest := lib_model.Manifest{Modules: []lib_model.ModuleReport{
			{Name: "webform", Version: "6.1.0"},
			{Name: "webform", Version: "6.2.0"},
		}}
		_, err := h.Sync(context.Background(), "site-1", manifest, false, time.Now().UTC())
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Errorf("expected invalid input error but got %v", err)
		}
		if len(stgHdlMock.SiteModules["site-1"]) != 0 {
			t.Error("inventory written despite validation error")
		}
	})
	t.Run("missing version", func(t *testing.T) {
		manifest := lib_model.Manifest{Modules: []lib_model.ModuleReport{
			{Name: "webform"},
		}}
		_, err := h.Sync(context.Background(), "site-1", manifest, false, time.Now().UTC())
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Errorf("expected invalid input error but got %v", err)
		}
	})
	t.Run("unknown site", func(t *testing.T) {
		_, err := h.Sync(context.Background(), "site-2", testManifest("6.1.0", "1.11.0"), false, time.Now().UTC())
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			t.Errorf("expected not found error but got %v", err)
		}
	})
	t.Run("too many modules", func(t *testing.T) {
		h2 := New(stgHdlMock, catalog_hdl.New(stgHdlMock, time.Second, 128, 64), mustScoring(t), time.Second, 1)
		_, err := h2.Sync(context.Background(), "site-1", testManifest("6.1.0", "1.11.0"), false, time.Now().UTC())
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Errorf("expected invalid input error but got %v", err)
		}
	})
}

func TestHandler_SyncNewModule(t *testing.T) {
	stgHdlMock := newStorageMock()
	h := newTestHandler(t, stgHdlMock)
	manifest := lib_model.Manifest{Modules: []lib_model.ModuleReport{
		{Name: "token", Version: "1.9.0", Enabled: true},
	}}
	result, err := h.Sync(context.Background(), "site-1", manifest, false, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Changed {
		t.Error("expected changed")
	}
	mod, ok := stgHdlMock.Modules["token"]
	if !ok {
		t.Fatal("module not in catalog")
	}
	if mod.Category != lib_model.ModuleCustom {
		t.Errorf("expected category custom but got '%s'", mod.Category)
	}
	if len(stgHdlMock.Versions["token"]) != 1 {
		t.Fatalf("expected 1 catalog version but got %d", len(stgHdlMock.Versions["token"]))
	}
	sm := stgHdlMock.SiteModules["site-1"]["token"]
	if sm.UpdateAvailable || sm.SecUpdateAvailable {
		t.Errorf("expected no pending updates, got %+v", sm)
	}
	site := stgHdlMock.Sites["site-1"]
	if site.Score != 100 {
		t.Errorf("expected score 100 but got %d", site.Score)
	}
}

func TestHandler_Recompute(t *testing.T) {
	stgHdlMock := newStorageMock()
	seedCatalog(stgHdlMock)
	h := newTestHandler(t, stgHdlMock)
	if _, err := h.Sync(context.Background(), "site-1", testManifest("6.1.5", "1.11.0"), false, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	site := stgHdlMock.Sites["site-1"]
	if site.SecurityUpdateCount != 0 {
		t.Fatalf("unexpected initial counters: %+v", site)
	}
	versions := stgHdlMock.Versions["pathauto"]
	versions[1].Security = true
	stgHdlMock.Versions["pathauto"] = versions
	if err := h.Recompute(context.Background(), "site-1", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	pa := stgHdlMock.SiteModules["site-1"]["pathauto"]
	if !pa.SecUpdateAvailable {
		t.Errorf("expected security update pending, got %+v", pa)
	}
	site = stgHdlMock.Sites["site-1"]
	if site.SecurityUpdateCount != 1 {
		t.Errorf("unexpected counters: %+v", site)
	}
	if site.Score != 70 {
		t.Errorf("expected score 70 but got %d", site.Score)
	}
	patchRuns := len(stgHdlMock.PatchRuns)
	if err := h.Recompute(context.Background(), "site-1", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	if len(stgHdlMock.PatchRuns) != patchRuns {
		t.Error("recompute must not write patch runs")
	}
}

func TestComputeFlags(t *testing.T) {
	versions := []lib_model.ModuleVersion{
		{Version: "1.0.0"},
		{Version: "1.1.0", Security: true},
		{Version: "2.0.0"},
		{Version: "8.x-1.5", Security: true},
	}
	ua, sua := computeFlags("1.0.0", versions)
	if !ua || !sua {
		t.Errorf("expected both flags for 1.0.0, got %v %v", ua, sua)
	}
	ua, sua = computeFlags("1.1.0", versions)
	if !ua || sua {
		t.Errorf("expected only update flag for 1.1.0, got %v %v", ua, sua)
	}
	ua, sua = computeFlags("2.0.0", versions)
	if ua || sua {
		t.Errorf("expected no flags for 2.0.0, got %v %v", ua, sua)
	}
	// different branch, successors on 1.x never match
	ua, sua = computeFlags("8.x-1.0", versions)
	if !ua || !sua {
		t.Errorf("expected both flags for 8.x-1.0, got %v %v", ua, sua)
	}
	// unparseable falls back to the total order
	ua, sua = computeFlags("dev", versions)
	if !ua || !sua {
		t.Errorf("expected both flags for dev, got %v %v", ua, sua)
	}
	ua, sua = computeFlags("1.0.0", []lib_model.ModuleVersion{{Version: "1.1.0", Security: true, Deleted: true}})
	if ua || sua {
		t.Errorf("expected deleted versions ignored, got %v %v", ua, sua)
	}
}

func TestCoversSecurity(t *testing.T) {
	versions := []lib_model.ModuleVersion{
		{Version: "1.0.0"},
		{Version: "1.1.0", Security: true},
		{Version: "2.0.0"},
	}
	if !coversSecurity("1.0.0", "1.1.0", versions) {
		t.Error("expected 1.0.0 -> 1.1.0 to cover a security release")
	}
	if !coversSecurity("1.0.0", "2.0.0", versions) {
		t.Error("expected 1.0.0 -> 2.0.0 to cover a security release")
	}
	if coversSecurity("1.1.0", "2.0.0", versions) {
		t.Error("expected 1.1.0 -> 2.0.0 to cover nothing")
	}
	if coversSecurity("1.1.0", "1.0.0", versions) {
		t.Error("expected downgrade to cover nothing")
	}
	t.Run("branch move", func(t *testing.T) {
		versions := []lib_model.ModuleVersion{
			{Version: "7.x-1.0"},
			{Version: "8.x-1.5", Security: true},
			{Version: "9.x-1.0"},
		}
		if coversSecurity("7.x-1.0", "9.x-1.0", versions) {
			t.Error("expected foreign branch release to not be covered")
		}
		versions = append(versions, lib_model.ModuleVersion{Version: "9.x-0.5", Security: true})
		if !coversSecurity("7.x-1.0", "9.x-1.0", versions) {
			t.Error("expected release on target branch to be covered")
		}
		if !coversSecurity("dev", "9.x-1.0", versions) {
			t.Error("expected unparseable baseline to fall back to the total order")
		}
	})
}

func mustScoring(t *testing.T) *scoring_hdl.Handler {
	t.Helper()
	h, err := scoring_hdl.New(25, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// ------------------------------

type txMock struct{}

func (t *txMock) Commit() error   { return nil }
func (t *txMock) Rollback() error { return nil }

type storageHandlerMock struct {
	Err         error
	Modules     map[string]lib_model.Module
	Versions    map[string][]lib_model.ModuleVersion
	Sites       map[string]lib_model.Site
	SiteModules map[string]map[string]lib_model.SiteModule
	PatchRuns   []lib_model.PatchRun
	Audits      []lib_model.AuditRecord
	verCount    int
}

func (m *storageHandlerMock) BeginTransaction(_ context.Context) (driver.Tx, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &txMock{}, nil
}

func (m *storageHandlerMock) ListModules(_ context.Context, _ lib_model.ModFilter) ([]lib_model.Module, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var modules []lib_model.Module
	for _, mod := range m.Modules {
		modules = append(modules, mod)
	}
	return modules, nil
}

func (m *storageHandlerMock) ReadModule(_ context.Context, mName string) (lib_model.Module, error) {
	if m.Err != nil {
		return lib_model.Module{}, m.Err
	}
	mod, ok := m.Modules[mName]
	if !ok {
		return lib_model.Module{}, lib_model.NewNotFoundError(errors.New("module not found"))
	}
	return mod, nil
}

func (m *storageHandlerMock) CreateModule(_ context.Context, _ driver.Tx, mod lib_model.Module) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Modules[mod.Name]; ok {
		return lib_model.NewConflictError(errors.New("duplicate module"))
	}
	m.Modules[mod.Name] = mod
	return nil
}

func (m *storageHandlerMock) UpdateModuleMeta(_ context.Context, _ driver.Tx, mod lib_model.Module) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Modules[mod.Name]; !ok {
		return lib_model.NewNotFoundError(errors.New("module not found"))
	}
	m.Modules[mod.Name] = mod
	return nil
}

func (m *storageHandlerMock) ListVersions(_ context.Context, mName string) ([]lib_model.ModuleVersion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	versions := make([]lib_model.ModuleVersion, len(m.Versions[mName]))
	copy(versions, m.Versions[mName])
	return versions, nil
}

func (m *storageHandlerMock) ReadVersion(_ context.Context, mName, version string) (lib_model.ModuleVersion, error) {
	if m.Err != nil {
		return lib_model.ModuleVersion{}, m.Err
	}
	for _, v := range m.Versions[mName] {
		if v.Version == version {
			return v, nil
		}
	}
	return lib_model.ModuleVersion{}, lib_model.NewNotFoundError(errors.New("version not found"))
}

func (m *storageHandlerMock) CreateVersion(_ context.Context, _ driver.Tx, version lib_model.ModuleVersion) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	for _, v := range m.Versions[version.Module] {
		if v.Version == version.Version {
			return "", lib_model.NewConflictError(errors.New("duplicate version"))
		}
	}
	m.verCount++
	version.ID = fmt.Sprintf("ver-%d", m.verCount)
	m.Versions[version.Module] = append(m.Versions[version.Module], version)
	return version.ID, nil
}

func (m *storageHandlerMock) SetVersionSecurity(_ context.Context, mName, version string) error {
	if m.Err != nil {
		return m.Err
	}
	for i, v := range m.Versions[mName] {
		if v.Version == version {
			m.Versions[mName][i].Security = true
			return nil
		}
	}
	return lib_model.NewNotFoundError(errors.New("version not found"))
}

func (m *storageHandlerMock) ReadSite(_ context.Context, sID string) (lib_model.Site, error) {
	if m.Err != nil {
		return lib_model.Site{}, m.Err
	}
	site, ok := m.Sites[sID]
	if !ok {
		return lib_model.Site{}, lib_model.NewNotFoundError(errors.New("site not found"))
	}
	return site, nil
}

func (m *storageHandlerMock) LockSite(_ context.Context, _ driver.Tx, sID string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Sites[sID]; !ok {
		return lib_model.NewNotFoundError(errors.New("site not found"))
	}
	return nil
}

func (m *storageHandlerMock) UpdateSiteStats(_ context.Context, _ driver.Tx, site lib_model.Site) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Sites[site.ID]; !ok {
		return lib_model.NewNotFoundError(errors.New("site not found"))
	}
	m.Sites[site.ID] = site
	return nil
}

func (m *storageHandlerMock) ListSiteModules(_ context.Context, sID string) ([]lib_model.SiteModule, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var siteModules []lib_model.SiteModule
	for _, sm := range m.SiteModules[sID] {
		siteModules = append(siteModules, sm)
	}
	return siteModules, nil
}

func (m *storageHandlerMock) ListSitesWithModule(_ context.Context, mName string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var sites []string
	for sID, siteModules := range m.SiteModules {
		if _, ok := siteModules[mName]; ok {
			sites = append(sites, sID)
		}
	}
	return sites, nil
}

func (m *storageHandlerMock) CreateSiteModule(_ context.Context, _ driver.Tx, siteModule lib_model.SiteModule) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.SiteModules[siteModule.Site][siteModule.Module]; ok {
		return lib_model.NewConflictError(errors.New("duplicate site module"))
	}
	if m.SiteModules[siteModule.Site] == nil {
		m.SiteModules[siteModule.Site] = make(map[string]lib_model.SiteModule)
	}
	m.SiteModules[siteModule.Site][siteModule.Module] = siteModule
	return nil
}

func (m *storageHandlerMock) UpdateSiteModule(_ context.Context, _ driver.Tx, siteModule lib_model.SiteModule) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.SiteModules[siteModule.Site][siteModule.Module]; !ok {
		return lib_model.NewNotFoundError(errors.New("site module not found"))
	}
	m.SiteModules[siteModule.Site][siteModule.Module] = siteModule
	return nil
}

func (m *storageHandlerMock) DeleteSiteModule(_ context.Context, _ driver.Tx, sID, mName string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.SiteModules[sID][mName]; !ok {
		return lib_model.NewNotFoundError(errors.New("site module not found"))
	}
	delete(m.SiteModules[sID], mName)
	return nil
}

func (m *storageHandlerMock) CreatePatchRun(_ context.Context, _ driver.Tx, patchRun lib_model.PatchRun) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	patchRun.ID = fmt.Sprintf("run-%d", len(m.PatchRuns)+1)
	m.PatchRuns = append(m.PatchRuns, patchRun)
	return patchRun.ID, nil
}

func (m *storageHandlerMock) ListPatchRuns(_ context.Context, sID string, _ lib_model.PatchRunFilter) ([]lib_model.PatchRun, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var patchRuns []lib_model.PatchRun
	for _, pr := range m.PatchRuns {
		if pr.Site == sID {
			patchRuns = append(patchRuns, pr)
		}
	}
	return patchRuns, nil
}

func (m *storageHandlerMock) CreateAuditRecord(_ context.Context, record lib_model.AuditRecord) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	record.ID = fmt.Sprintf("audit-%d", len(m.Audits)+1)
	m.Audits = append(m.Audits, record)
	return record.ID, nil
}

func (m *storageHandlerMock) ListAuditRecords(_ context.Context, filter lib_model.AuditFilter) ([]lib_model.AuditRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var records []lib_model.AuditRecord
	for _, r := range m.Audits {
		if filter.Site != "" && r.Site != filter.Site {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}
