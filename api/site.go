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

package api

import (
	"context"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
)

func (a *Api) GetSite(ctx context.Context, sID string) (lib_model.Site, error) {
	return a.storageHandler.ReadSite(ctx, sID)
}

func (a *Api) GetSiteModules(ctx context.Context, sID string) ([]lib_model.SiteModule, error) {
	if _, err := a.storageHandler.ReadSite(ctx, sID); err != nil {
		return nil, err
	}
	return a.storageHandler.ListSiteModules(ctx, sID)
}

func (a *Api) GetPatchRuns(ctx context.Context, sID string, filter lib_model.PatchRunFilter) ([]lib_model.PatchRun, error) {
	if _, err := a.storageHandler.ReadSite(ctx, sID); err != nil {
		return nil, err
	}
	return a.storageHandler.ListPatchRuns(ctx, sID, filter)
}

func (a *Api) GetAuditRecords(ctx context.Context, filter lib_model.AuditFilter) ([]lib_model.AuditRecord, error) {
	return a.storageHandler.ListAuditRecords(ctx, filter)
}
