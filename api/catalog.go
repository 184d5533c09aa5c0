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
	"errors"
	"fmt"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/CMS-Fleet/cms-update-manager/util"
	"time"
)

func (a *Api) GetModules(ctx context.Context, filter lib_model.ModFilter) ([]lib_model.Module, error) {
	return a.storageHandler.ListModules(ctx, filter)
}

func (a *Api) GetModule(ctx context.Context, mName string) (lib_model.Module, error) {
	return a.storageHandler.ReadModule(ctx, mName)
}

func (a *Api) GetModuleVersions(ctx context.Context, mName string) ([]lib_model.ModuleVersion, error) {
	if _, err := a.storageHandler.ReadModule(ctx, mName); err != nil {
		return nil, err
	}
	return a.storageHandler.ListVersions(ctx, mName)
}

// SetVersionSecurity marks a catalog version as a security release and
// schedules a job recomputing the update flags of every site running the
// module. The flag is one-way, a marked version stays marked.
func (a *Api) SetVersionSecurity(ctx context.Context, token, mName, version string) (string, error) {
	access, err := a.authHandler.CheckCatalogAccess(ctx, token)
	if err != nil {
		return "", err
	}
	if !access.Allowed || !access.Authoritative {
		return "", lib_model.NewForbiddenError(errors.New("catalog access denied"))
	}
	if _, err = a.storageHandler.ReadVersion(ctx, mName, version); err != nil {
		return "", err
	}
	if err = a.storageHandler.SetVersionSecurity(ctx, mName, version); err != nil {
		return "", err
	}
	sites, err := a.storageHandler.ListSitesWithModule(ctx, mName)
	if err != nil {
		return "", err
	}
	return a.jobHandler.Create(fmt.Sprintf("recompute update flags for module '%s'", mName), func(ctx context.Context, cf context.CancelFunc) error {
		defer cf()
		timestamp := time.Now().UTC()
		for _, sID := range sites {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.syncHandler.Recompute(ctx, sID, timestamp); err != nil {
				util.Logger.Errorf("recomputing update flags for site '%s' failed: %s", sID, err)
			}
		}
		return ctx.Err()
	})
}
