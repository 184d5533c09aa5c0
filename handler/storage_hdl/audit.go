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
	"errors"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"strconv"
	"strings"
	"time"
)

// Audit records are written outside the synchronization transaction so that
// rejected and invalid submissions are kept as well.
func (h *Handler) CreateAuditRecord(ctx context.Context, record lib_model.AuditRecord) (string, error) {
	res, err := h.db.ExecContext(ctx, "INSERT INTO `audit_records` (`id`, `site`, `time`, `status`, `payload`) VALUES (UUID(), ?, ?, ?, ?)", record.Site, record.Time, record.Status, record.Payload)
	if err != nil {
		return "", lib_model.NewInternalError(err)
	}
	i, err := res.LastInsertId()
	if err != nil {
		return "", lib_model.NewInternalError(err)
	}
	row := h.db.QueryRowContext(ctx, "SELECT `id` FROM `audit_records` WHERE `index` = ?", i)
	var id string
	if err = row.Scan(&id); err != nil {
		return "", lib_model.NewInternalError(err)
	}
	if id == "" {
		return "", lib_model.NewInternalError(errors.New("generating id failed"))
	}
	return id, nil
}

func (h *Handler) ListAuditRecords(ctx context.Context, filter lib_model.AuditFilter) ([]lib_model.AuditRecord, error) {
	q := "SELECT `id`, `site`, `time`, `status`, `payload` FROM `audit_records`"
	var fc []string
	var val []any
	if filter.Site != "" {
		fc = append(fc, "`site` = ?")
		val = append(val, filter.Site)
	}
	if filter.Status != "" {
		fc = append(fc, "`status` = ?")
		val = append(val, filter.Status)
	}
	if len(fc) > 0 {
		q += " WHERE " + strings.Join(fc, " AND ")
	}
	q += " ORDER BY `time` DESC"
	if filter.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(filter.Limit)
	}
	rows, err := h.db.QueryContext(ctx, q, val...)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var records []lib_model.AuditRecord
	for rows.Next() {
		var record lib_model.AuditRecord
		var tt []uint8
		if err = rows.Scan(&record.ID, &record.Site, &tt, &record.Status, &record.Payload); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		if record.Time, err = time.Parse(tLayout, string(tt)); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return records, nil
}
