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
	"github.com/go-sql-driver/mysql"
)

const tLayout = "2006-01-02 15:04:05.000000"

type Handler struct {
	db *sql.DB
}

func New(db *sql.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) BeginTransaction(ctx context.Context) (driver.Tx, error) {
	tx, e := h.db.BeginTx(ctx, nil)
	if e != nil {
		return nil, lib_model.NewInternalError(e)
	}
	return tx, nil
}

// insertErr maps duplicate-key violations to ConflictError so callers can
// run the upsert-or-retry discipline without parsing driver errors.
func insertErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return lib_model.NewConflictError(err)
	}
	return lib_model.NewInternalError(err)
}

func removeDuplicates(sl []string) []string {
	set := make(map[string]struct{})
	var sl2 []string
	for _, s := range sl {
		if _, ok := set[s]; !ok {
			set[s] = struct{}{}
			sl2 = append(sl2, s)
		}
	}
	return sl2
}
