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
	"fmt"
	"github.com/CMS-Fleet/cms-update-manager/handler"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/CMS-Fleet/cms-update-manager/util"
	"github.com/CMS-Fleet/cms-update-manager/util/mod_ver"
	"github.com/SENERGY-Platform/go-service-base/context-hdl"
	"time"
)

type Handler struct {
	storageHandler handler.StorageHandler
	catalogHandler handler.CatalogHandler
	scoringHandler handler.ScoringHandler
	dbTimeout      time.Duration
	maxModules     int
	siteLocks      *util.KeyMutex
}

func New(storageHandler handler.StorageHandler, catalogHandler handler.CatalogHandler, scoringHandler handler.ScoringHandler, dbTimeout time.Duration, maxModules int) *Handler {
	return &Handler{
		storageHandler: storageHandler,
		catalogHandler: catalogHandler,
		scoringHandler: scoringHandler,
		dbTimeout:      dbTimeout,
		maxModules:     maxModules,
		siteLocks:      util.NewKeyMutex(),
	}
}

// Sync applies a site's full manifest. Catalog rows are reconciled outside
// the transaction (append-mostly, idempotent), everything belonging to the
// site commits atomically: inventory rows, flags, counters, score and the
// patch run. Submissions for the same site are serialized, different sites
// proceed in parallel.
func (h *Handler) Sync(ctx context.Context, sID string, manifest lib_model.Manifest, authoritative bool, timestamp time.Time) (lib_model.SyncResult, error) {
	if err := h.validateManifest(manifest); err != nil {
		return lib_model.SyncResult{}, err
	}
	h.siteLocks.Lock(sID)
	defer h.siteLocks.Unlock(sID)
	ch := context_hdl.New()
	defer ch.CancelAll()
	site, err := h.storageHandler.ReadSite(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), sID)
	if err != nil {
		return lib_model.SyncResult{}, err
	}
	desired, catalogVersions, err := h.reconcileManifest(ctx, sID, manifest, authoritative, timestamp)
	if err != nil {
		return lib_model.SyncResult{}, err
	}
	current, err := h.storageHandler.ListSiteModules(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), sID)
	if err != nil {
		return lib_model.SyncResult{}, err
	}
	currentMap := make(map[string]lib_model.SiteModule)
	for _, sm := range current {
		currentMap[sm.Module] = sm
	}
	tx, err := h.storageHandler.BeginTransaction(ctx)
	if err != nil {
		return lib_model.SyncResult{}, err
	}
	defer tx.Rollback()
	if err = h.storageHandler.LockSite(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, sID); err != nil {
		return lib_model.SyncResult{}, err
	}
	var result lib_model.SyncResult
	for _, sm := range desired {
		cur, ok := currentMap[sm.Module]
		if !ok {
			if err = h.storageHandler.CreateSiteModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, sm); err != nil {
				return lib_model.SyncResult{}, err
			}
			result.Changed = true
			continue
		}
		if sm.VersionID != cur.VersionID {
			result.ModulesUpdated++
			if coversSecurity(cur.Version, sm.Version, catalogVersions[sm.Module]) {
				result.SecurityPatchesApplied++
			}
		}
		if siteModuleDiffers(cur, sm) {
			if err = h.storageHandler.UpdateSiteModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, sm); err != nil {
				return lib_model.SyncResult{}, err
			}
			result.Changed = true
		}
	}
	desiredSet := make(map[string]struct{})
	for _, sm := range desired {
		desiredSet[sm.Module] = struct{}{}
	}
	for _, cur := range current {
		if _, ok := desiredSet[cur.Module]; !ok {
			if err = h.storageHandler.DeleteSiteModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, sID, cur.Module); err != nil {
				return lib_model.SyncResult{}, err
			}
			result.Changed = true
		}
	}
	if !result.Changed {
		return result, nil
	}
	applySiteStats(&site, h.scoringHandler, desired)
	site.Updated = timestamp
	if err = h.storageHandler.UpdateSiteStats(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, site); err != nil {
		return lib_model.SyncResult{}, err
	}
	patchRun := lib_model.PatchRun{
		Site:            sID,
		Time:            timestamp,
		ModulesUpdated:  result.ModulesUpdated,
		SecurityPatches: result.SecurityPatchesApplied,
	}
	if _, err = h.storageHandler.CreatePatchRun(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, patchRun); err != nil {
		return lib_model.SyncResult{}, err
	}
	if err = tx.Commit(); err != nil {
		return lib_model.SyncResult{}, lib_model.NewInternalError(err)
	}
	return result, nil
}

// Recompute refreshes flags, counters and score of one site against the
// current catalog without touching the installed versions. No patch run is
// written, nothing was patched on the site itself.
func (h *Handler) Recompute(ctx context.Context, sID string, timestamp time.Time) error {
	h.siteLocks.Lock(sID)
	defer h.siteLocks.Unlock(sID)
	ch := context_hdl.New()
	defer ch.CancelAll()
	site, err := h.storageHandler.ReadSite(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), sID)
	if err != nil {
		return err
	}
	current, err := h.storageHandler.ListSiteModules(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), sID)
	if err != nil {
		return err
	}
	versionCache := make(map[string][]lib_model.ModuleVersion)
	for _, sm := range current {
		if _, ok := versionCache[sm.Module]; !ok {
			versions, err := h.storageHandler.ListVersions(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), sm.Module)
			if err != nil {
				return err
			}
			versionCache[sm.Module] = versions
		}
	}
	tx, err := h.storageHandler.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err = h.storageHandler.LockSite(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, sID); err != nil {
		return err
	}
	changed := false
	updated := make([]lib_model.SiteModule, 0, len(current))
	for _, sm := range current {
		sm2 := sm
		sm2.UpdateAvailable, sm2.SecUpdateAvailable = computeFlags(sm.Version, versionCache[sm.Module])
		if sm2.UpdateAvailable != sm.UpdateAvailable || sm2.SecUpdateAvailable != sm.SecUpdateAvailable {
			sm2.Updated = timestamp
			if err = h.storageHandler.UpdateSiteModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, sm2); err != nil {
				return err
			}
			changed = true
		}
		updated = append(updated, sm2)
	}
	if !changed {
		return nil
	}
	applySiteStats(&site, h.scoringHandler, updated)
	site.Updated = timestamp
	if err = h.storageHandler.UpdateSiteStats(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, site); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (h *Handler) validateManifest(manifest lib_model.Manifest) error {
	if h.maxModules > 0 && len(manifest.Modules) > h.maxModules {
		return lib_model.NewInvalidInputError(fmt.Errorf("manifest exceeds %d modules", h.maxModules))
	}
	seen := make(map[string]struct{})
	for _, report := range manifest.Modules {
		if err := h.catalogHandler.Validate(report); err != nil {
			return err
		}
		if _, ok := seen[report.Name]; ok {
			return lib_model.NewInvalidInputError(fmt.Errorf("module '%s' reported twice", report.Name))
		}
		seen[report.Name] = struct{}{}
	}
	return nil
}

func (h *Handler) reconcileManifest(ctx context.Context, sID string, manifest lib_model.Manifest, authoritative bool, timestamp time.Time) ([]lib_model.SiteModule, map[string][]lib_model.ModuleVersion, error) {
	ch := context_hdl.New()
	defer ch.CancelAll()
	desired := make([]lib_model.SiteModule, 0, len(manifest.Modules))
	catalogVersions := make(map[string][]lib_model.ModuleVersion)
	for _, report := range manifest.Modules {
		_, version, err := h.catalogHandler.Reconcile(ctx, report, authoritative)
		if err != nil {
			return nil, nil, err
		}
		versions, err := h.storageHandler.ListVersions(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), report.Name)
		if err != nil {
			return nil, nil, err
		}
		catalogVersions[report.Name] = versions
		sm := lib_model.SiteModule{
			Site:      sID,
			Module:    report.Name,
			VersionID: version.ID,
			Version:   version.Version,
			Enabled:   report.Enabled,
			Updated:   timestamp,
		}
		sm.UpdateAvailable, sm.SecUpdateAvailable = computeFlags(version.Version, versions)
		desired = append(desired, sm)
	}
	return desired, catalogVersions, nil
}

// computeFlags compares the installed version against every catalog version
// of the module. Parseable versions only consider successors on their own
// branch, an unparseable installed version falls back to the total order.
func computeFlags(current string, versions []lib_model.ModuleVersion) (updateAvailable, secUpdateAvailable bool) {
	curV, curOk := mod_ver.Parse(current)
	for _, v := range versions {
		if v.Deleted {
			continue
		}
		if curOk {
			vv, ok := mod_ver.Parse(v.Version)
			if !ok || !mod_ver.SameBranch(curV, vv) {
				continue
			}
		}
		if mod_ver.Compare(v.Version, current) > 0 {
			updateAvailable = true
			if v.Security {
				secUpdateAvailable = true
			}
		}
	}
	return
}

// coversSecurity reports whether moving from old to new applied at least one
// security release, i.e. some version v with old < v <= new carries the
// security flag. When both endpoints parse, versions of other branches are
// not counted, a branch move only covers releases of the new branch.
func coversSecurity(old, new string, versions []lib_model.ModuleVersion) bool {
	newV, newOk := mod_ver.Parse(new)
	_, oldOk := mod_ver.Parse(old)
	for _, v := range versions {
		if v.Deleted || !v.Security {
			continue
		}
		if newOk && oldOk {
			vv, ok := mod_ver.Parse(v.Version)
			if !ok || !mod_ver.SameBranch(newV, vv) {
				continue
			}
		}
		if mod_ver.Compare(v.Version, old) > 0 && mod_ver.Compare(v.Version, new) <= 0 {
			return true
		}
	}
	return false
}

func applySiteStats(site *lib_model.Site, scoringHandler handler.ScoringHandler, siteModules []lib_model.SiteModule) {
	total, security, nonSecurity := scoringHandler.Stats(siteModules)
	site.ModuleCount = total
	site.SecurityUpdateCount = security
	site.UpdateCount = security + nonSecurity
	site.Score = scoringHandler.Score(siteModules)
}

func siteModuleDiffers(a, b lib_model.SiteModule) bool {
	return a.VersionID != b.VersionID || a.Enabled != b.Enabled || a.UpdateAvailable != b.UpdateAvailable || a.SecUpdateAvailable != b.SecUpdateAvailable
}
