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

package lib

import (
	"context"
	"github.com/CMS-Fleet/cms-update-manager/lib/model"
)

type Api interface {
	SubmitManifest(ctx context.Context, token, sID string, payload []byte) (model.SyncResult, error)
	GetModules(ctx context.Context, filter model.ModFilter) ([]model.Module, error)
	GetModule(ctx context.Context, mName string) (model.Module, error)
	GetModuleVersions(ctx context.Context, mName string) ([]model.ModuleVersion, error)
	SetVersionSecurity(ctx context.Context, token, mName, version string) (string, error)
	GetSite(ctx context.Context, sID string) (model.Site, error)
	GetSiteModules(ctx context.Context, sID string) ([]model.SiteModule, error)
	GetPatchRuns(ctx context.Context, sID string, filter model.PatchRunFilter) ([]model.PatchRun, error)
	GetAuditRecords(ctx context.Context, filter model.AuditFilter) ([]model.AuditRecord, error)
	GetJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
	GetJob(ctx context.Context, jID string) (model.Job, error)
	CancelJob(ctx context.Context, jID string) error
}
