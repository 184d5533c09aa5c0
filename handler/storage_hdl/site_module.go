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

package storage_hdl

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"time"
)

func (h *Handler) ListSiteModules(ctx context.Context, sID string) ([]lib_model.SiteModule, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT sm.`site`, sm.`module`, sm.`version_id`, mv.`version`, sm.`enabled`, sm.`update_available`, sm.`security_update_available`, sm.`updated` FROM `site_modules` sm JOIN `module_versions` mv ON sm.`version_id` = mv.`id` WHERE sm.`site` = ? ORDER BY sm.`module`", sID)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var siteModules []lib_model.SiteModule
	for rows.Next() {
		var sm lib_model.SiteModule
		var ut []uint8
		if err = rows.Scan(&sm.Site, &sm.Module, &sm.VersionID, &sm.Version, &sm.Enabled, &sm.UpdateAvailable, &sm.SecUpdateAvailable, &ut); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		if sm.Updated, err = time.Parse(tLayout, string(ut)); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		siteModules = append(siteModules, sm)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return siteModules, nil
}

func (h *Handler) CreateSiteModule(ctx context.Context, txItf driver.Tx, siteModule lib_model.SiteModule) error {
	execContext := h.db.ExecContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
	}
	_, err := execContext(ctx, "INSERT INTO `site_modules` (`site`, `module`, `version_id`, `enabled`, `update_available`, `security_update_available`, `updated`) VALUES (?, ?, ?, ?, ?, ?, ?)", siteModule.Site, siteModule.Module, siteModule.VersionID, siteModule.Enabled, siteModule.UpdateAvailable, siteModule.SecUpdateAvailable, siteModule.Updated)
	if err != nil {
		return insertErr(err)
	}
	return nil
}

func (h *Handler) UpdateSiteModule(ctx context.Context, txItf driver.Tx, siteModule lib_model.SiteModule) error {
	execContext := h.db.ExecContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
	}
	res, err := execContext(ctx, "UPDATE `site_modules` SET `version_id` = ?, `enabled` = ?, `update_available` = ?, `security_update_available` = ?, `updated` = ? WHERE `site` = ? AND `module` = ?", siteModule.VersionID, siteModule.Enabled, siteModule.UpdateAvailable, siteModule.SecUpdateAvailable, siteModule.Updated, siteModule.Site, siteModule.Module)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	if _, err = res.RowsAffected(); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (h *Handler) DeleteSiteModule(ctx context.Context, txItf driver.Tx, sID, mName string) error {
	execContext := h.db.ExecContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
	}
	res, err := execContext(ctx, "DELETE FROM `site_modules` WHERE `site` = ? AND `module` = ?", sID, mName)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	if n < 1 {
		return lib_model.NewNotFoundError(errors.New("no rows affected"))
	}
	return nil
}
