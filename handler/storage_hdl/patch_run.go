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
	"strconv"
	"strings"
	"time"
)

// Patch runs are append-only, there are no update or delete statements for
// this table.
func (h *Handler) CreatePatchRun(ctx context.Context, txItf driver.Tx, patchRun lib_model.PatchRun) (string, error) {
	execContext := h.db.ExecContext
	queryRowContext := h.db.QueryRowContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
		queryRowContext = tx.QueryRowContext
	}
	res, err := execContext(ctx, "INSERT INTO `patch_runs` (`id`, `site`, `time`, `modules_updated`, `security_patches`) VALUES (UUID(), ?, ?, ?, ?)", patchRun.Site, patchRun.Time, patchRun.ModulesUpdated, patchRun.SecurityPatches)
	if err != nil {
		return "", lib_model.NewInternalError(err)
	}
	i, err := res.LastInsertId()
	if err != nil {
		return "", lib_model.NewInternalError(err)
	}
	row := queryRowContext(ctx, "SELECT `id` FROM `patch_runs` WHERE `index` = ?", i)
	var id string
	if err = row.Scan(&id); err != nil {
		return "", lib_model.NewInternalError(err)
	}
	if id == "" {
		return "", lib_model.NewInternalError(errors.New("generating id failed"))
	}
	return id, nil
}

func (h *Handler) ListPatchRuns(ctx context.Context, sID string, filter lib_model.PatchRunFilter) ([]lib_model.PatchRun, error) {
	q := "SELECT `id`, `site`, `time`, `modules_updated`, `security_patches` FROM `patch_runs`"
	fc := []string{"`site` = ?"}
	val := []any{sID}
	if !filter.Since.IsZero() {
		fc = append(fc, "`time` >= ?")
		val = append(val, filter.Since)
	}
	if !filter.Until.IsZero() {
		fc = append(fc, "`time` <= ?")
		val = append(val, filter.Until)
	}
	q += " WHERE " + strings.Join(fc, " AND ") + " ORDER BY `time` DESC"
	if filter.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(filter.Limit)
	}
	rows, err := h.db.QueryContext(ctx, q, val...)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var patchRuns []lib_model.PatchRun
	for rows.Next() {
		var patchRun lib_model.PatchRun
		var tt []uint8
		if err = rows.Scan(&patchRun.ID, &patchRun.Site, &tt, &patchRun.ModulesUpdated, &patchRun.SecurityPatches); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		if patchRun.Time, err = time.Parse(tLayout, string(tt)); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		patchRuns = append(patchRuns, patchRun)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return patchRuns, nil
}
