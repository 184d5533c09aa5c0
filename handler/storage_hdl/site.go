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

func (h *Handler) ReadSite(ctx context.Context, sID string) (lib_model.Site, error) {
	row := h.db.QueryRowContext(ctx, "SELECT `id`, `url`, `name`, `module_count`, `update_count`, `security_update_count`, `score`, `deleted`, `updated` FROM `sites` WHERE `id` = ?", sID)
	var site lib_model.Site
	var ut []uint8
	err := row.Scan(&site.ID, &site.URL, &site.Name, &site.ModuleCount, &site.UpdateCount, &site.SecurityUpdateCount, &site.Score, &site.Deleted, &ut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.Site{}, lib_model.NewNotFoundError(err)
		}
		return lib_model.Site{}, lib_model.NewInternalError(err)
	}
	if site.Updated, err = time.Parse(tLayout, string(ut)); err != nil {
		return lib_model.Site{}, lib_model.NewInternalError(err)
	}
	return site, nil
}

// LockSite takes the row lock serializing concurrent synchronizations for
// one site, held until the surrounding transaction ends.
func (h *Handler) LockSite(ctx context.Context, txItf driver.Tx, sID string) error {
	tx := txItf.(*sql.Tx)
	row := tx.QueryRowContext(ctx, "SELECT `id` FROM `sites` WHERE `id` = ? FOR UPDATE", sID)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.NewNotFoundError(err)
		}
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (h *Handler) UpdateSiteStats(ctx context.Context, txItf driver.Tx, site lib_model.Site) error {
	execContext := h.db.ExecContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
	}
	res, err := execContext(ctx, "UPDATE `sites` SET `module_count` = ?, `update_count` = ?, `security_update_count` = ?, `score` = ?, `updated` = ? WHERE `id` = ?", site.ModuleCount, site.UpdateCount, site.SecurityUpdateCount, site.Score, site.Updated, site.ID)
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

func (h *Handler) ListSitesWithModule(ctx context.Context, mName string) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT `site` FROM `site_modules` WHERE `module` = ?", mName)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var sites []string
	for rows.Next() {
		var sID string
		if err = rows.Scan(&sID); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		sites = append(sites, sID)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return sites, nil
}
