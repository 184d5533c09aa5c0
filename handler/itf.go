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

package handler

import (
	"context"
	"database/sql/driver"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"time"
)

type StorageHandler interface {
	BeginTransaction(ctx context.Context) (driver.Tx, error)
	ListModules(ctx context.Context, filter lib_model.ModFilter) ([]lib_model.Module, error)
	ReadModule(ctx context.Context, mName string) (lib_model.Module, error)
	CreateModule(ctx context.Context, txItf driver.Tx, mod lib_model.Module) error
	UpdateModuleMeta(ctx context.Context, txItf driver.Tx, mod lib_model.Module) error
	ListVersions(ctx context.Context, mName string) ([]lib_model.ModuleVersion, error)
	ReadVersion(ctx context.Context, mName, version string) (lib_model.ModuleVersion, error)
	CreateVersion(ctx context.Context, txItf driver.Tx, version lib_model.ModuleVersion) (string, error)
	SetVersionSecurity(ctx context.Context, mName, version string) error
	ReadSite(ctx context.Context, sID string) (lib_model.Site, error)
	LockSite(ctx context.Context, txItf driver.Tx, sID string) error
	UpdateSiteStats(ctx context.Context, txItf driver.Tx, site lib_model.Site) error
	ListSiteModules(ctx context.Context, sID string) ([]lib_model.SiteModule, error)
	ListSitesWithModule(ctx context.Context, mName string) ([]string, error)
	CreateSiteModule(ctx context.Context, txItf driver.Tx, siteModule lib_model.SiteModule) error
	UpdateSiteModule(ctx context.Context, txItf driver.Tx, siteModule lib_model.SiteModule) error
	DeleteSiteModule(ctx context.Context, txItf driver.Tx, sID, mName string) error
	CreatePatchRun(ctx context.Context, txItf driver.Tx, patchRun lib_model.PatchRun) (string, error)
	ListPatchRuns(ctx context.Context, sID string, filter lib_model.PatchRunFilter) ([]lib_model.PatchRun, error)
	CreateAuditRecord(ctx context.Context, record lib_model.AuditRecord) (string, error)
	ListAuditRecords(ctx context.Context, filter lib_model.AuditFilter) ([]lib_model.AuditRecord, error)
}

type CatalogHandler interface {
	Reconcile(ctx context.Context, report lib_model.ModuleReport, authoritative bool) (lib_model.Module, lib_model.ModuleVersion, error)
	Validate(report lib_model.ModuleReport) error
}

type SyncHandler interface {
	Sync(ctx context.Context, sID string, manifest lib_model.Manifest, authoritative bool, timestamp time.Time) (lib_model.SyncResult, error)
	Recompute(ctx context.Context, sID string, timestamp time.Time) error
}

type ScoringHandler interface {
	Score(siteModules []lib_model.SiteModule) int
	Stats(siteModules []lib_model.SiteModule) (total, security, nonSecurity int)
}

type Access struct {
	Allowed       bool
	Authoritative bool
}

type AuthHandler interface {
	CheckSiteAccess(ctx context.Context, token, sID string) (Access, error)
	CheckCatalogAccess(ctx context.Context, token string) (Access, error)
}

type JobHandler interface {
	Create(desc string, tFunc func(context.Context, context.CancelFunc) error) (string, error)
	Get(jID string) (lib_model.Job, error)
	Cancel(jID string) error
	List(filter lib_model.JobFilter) []lib_model.Job
	PurgeJobs(maxAge time.Duration) int
}
