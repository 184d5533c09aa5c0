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
	"github.com/CMS-Fleet/cms-update-manager/util/mod_ver"
	"time"
)

func (h *Handler) ListVersions(ctx context.Context, mName string) ([]lib_model.ModuleVersion, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT `id`, `module`, `version`, `released`, `security`, `deleted` FROM `module_versions` WHERE `module` = ? ORDER BY `order_key`", mName)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var versions []lib_model.ModuleVersion
	for rows.Next() {
		version, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return versions, nil
}

func (h *Handler) ReadVersion(ctx context.Context, mName, version string) (lib_model.ModuleVersion, error) {
	row := h.db.QueryRowContext(ctx, "SELECT `id`, `module`, `version`, `released`, `security`, `deleted` FROM `module_versions` WHERE `module` = ? AND `version` = ?", mName, version)
	modVersion, err := scanVersion(row.Scan)
	if err != nil {
		return lib_model.ModuleVersion{}, err
	}
	return modVersion, nil
}

func (h *Handler) CreateVersion(ctx context.Context, txItf driver.Tx, version lib_model.ModuleVersion) (string, error) {
	execContext := h.db.ExecContext
	queryRowContext := h.db.QueryRowContext
	if txItf != nil {
		tx := txItf.(*sql.Tx)
		execContext = tx.ExecContext
		queryRowContext = tx.QueryRowContext
	}
	res, err := execContext(ctx, "INSERT INTO `module_versions` (`id`, `module`, `version`, `order_key`, `released`, `security`, `deleted`) VALUES (UUID(), ?, ?, ?, ?, ?, ?)", version.Module, version.Version, mod_ver.OrderKey(version.Version), version.Released, version.Security, version.Deleted)
	if err != nil {
		return "", insertErr(err)
	}
	i, err := res.LastInsertId()
	if err != nil {
		return "", lib_model.NewInternalError(err)
	}
	row := queryRowContext(ctx, "SELECT `id` FROM `module_versions` WHERE `index` = ?", i)
	var id string
	if err = row.Scan(&id); err != nil {
		return "", lib_model.NewInternalError(err)
	}
	if id == "" {
		return "", lib_model.NewInternalError(errors.New("generating id failed"))
	}
	return id, nil
}

// SetVersionSecurity only ever raises the flag, catalog versions never lose
// security relevance.
func (h *Handler) SetVersionSecurity(ctx context.Context, mName, version string) error {
	res, err := h.db.ExecContext(ctx, "UPDATE `module_versions` SET `security` = TRUE WHERE `module` = ? AND `version` = ?", mName, version)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	// affected rows stay 0 when the flag is already set
	if _, err = res.RowsAffected(); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func scanVersion(scan func(...any) error) (lib_model.ModuleVersion, error) {
	var version lib_model.ModuleVersion
	var rt []uint8
	err := scan(&version.ID, &version.Module, &version.Version, &rt, &version.Security, &version.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.ModuleVersion{}, lib_model.NewNotFoundError(err)
		}
		return lib_model.ModuleVersion{}, lib_model.NewInternalError(err)
	}
	if len(rt) > 0 {
		t, err := time.Parse(tLayout, string(rt))
		if err != nil {
			return lib_model.ModuleVersion{}, lib_model.NewInternalError(err)
		}
		version.Released = &t
	}
	return version, nil
}
