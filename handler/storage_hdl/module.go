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

func (h *Handler) ListModules(ctx context.Context, filter lib_model.ModFilter) ([]lib_model.Module, error) {
	q := "SELECT `name`, `display_name`, `category`, `link`, `deleted`, `added` FROM `modules`"
	fc, val := genModFilter(filter)
	if fc != "" {
		q += fc
	}
	q += " ORDER BY `display_name`, `name`"
	if filter.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(filter.Limit)
		if filter.Offset > 0 {
			q += " OFFSET " + strconv.Itoa(filter.Offset)
		}
	}
	rows, err := h.db.QueryContext(ctx, q, val...)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var modules []lib_model.Module
	for rows.Next() {
		var mod lib_model.Module
		var at []uint8
		if err = rows.Scan(&mod.Name, &mod.DisplayName, &mod.Category, &mod.Link, &mod.Deleted, &at); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		if mod.Added, err = time.Parse(tLayout, string(at)); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		modules = append(modules, mod)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return modules, nil
}

func (h *Handler) ReadModule(ctx context.Context, mName string) (lib_model.Module, error) {
	row := h.db.QueryRowContext(ctx, "SELECT `name`, `display_name`, `category`, `link`, `deleted`, `added` FROM `modules` WHERE `name` = ?", mName)
	var mod lib_model.Module
	var at []uint8
	err := row.Scan(&mod.Name, &mod.DisplayName, &mod.Category, &mod.Link, &mod.Deleted, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.Module{}, lib_model.NewNotFoundError(err)
		}
		return lib_model.Module{}, lib_model.NewInternalError(err)
	}
	if mod.Added, err = time.Parse(tLayout, string(at)); err != nil {
		return lib_model.Module{}, lib_model.NewInternalError(err)
	}
	return mod, nil
}

func (h *Handler) CreateModule(ctx context.Context, txItf driver.Tx, mod lib_model.Module) error {
	execContext := h.db.ExecContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
	}
	_, err := execContext(ctx, "INSERT INTO `modules` (`name`, `display_name`, `category`, `link`, `deleted`, `added`) VALUES (?, ?, ?, ?, ?, ?)", mod.Name, mod.DisplayName, mod.Category, mod.Link, mod.Deleted, mod.Added)
	if err != nil {
		return insertErr(err)
	}
	return nil
}

// UpdateModuleMeta only fills descriptive fields, the machine name is
// immutable.
func (h *Handler) UpdateModuleMeta(ctx context.Context, txItf driver.Tx, mod lib_model.Module) error {
	execContext := h.db.ExecContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
	}
	res, err := execContext(ctx, "UPDATE `modules` SET `display_name` = ?, `category` = ?, `link` = ? WHERE `name` = ?", mod.DisplayName, mod.Category, mod.Link, mod.Name)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	if _, err = res.RowsAffected(); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func genModFilter(filter lib_model.ModFilter) (string, []any) {
	var fc []string
	var val []any
	if len(filter.Names) > 0 {
		names := removeDuplicates(filter.Names)
		fc = append(fc, "`name` IN ("+strings.Repeat("?, ", len(names)-1)+"?)")
		for _, n := range names {
			val = append(val, n)
		}
	}
	if filter.DisplayName != "" {
		fc = append(fc, "`display_name` LIKE ?")
		val = append(val, "%"+filter.DisplayName+"%")
	}
	if filter.Category != "" {
		fc = append(fc, "`category` = ?")
		val = append(val, filter.Category)
	}
	if filter.SecUpdate {
		fc = append(fc, "`name` IN (SELECT DISTINCT `module` FROM `site_modules` WHERE `security_update_available` = TRUE)")
	}
	if len(fc) > 0 {
		return " WHERE " + strings.Join(fc, " AND "), val
	}
	return "", nil
}
