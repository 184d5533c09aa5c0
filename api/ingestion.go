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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/CMS-Fleet/cms-update-manager/util"
	"time"
)

// SubmitManifest runs the full ingestion path for one site: caller access
// check, payload decoding, manifest validation, catalog reconciliation and
// inventory sync. Every decided submission leaves an audit record, the raw
// payload included, so malformed manifests remain available for diagnosis.
func (a *Api) SubmitManifest(ctx context.Context, token, sID string, payload []byte) (lib_model.SyncResult, error) {
	access, err := a.authHandler.CheckSiteAccess(ctx, token, sID)
	if err != nil {
		return lib_model.SyncResult{}, err
	}
	timestamp := time.Now().UTC()
	if !access.Allowed {
		a.writeAudit(ctx, sID, timestamp, lib_model.AuditRejected, payload)
		return lib_model.SyncResult{}, lib_model.NewForbiddenError(errors.New("site access denied"))
	}
	var manifest lib_model.Manifest
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&manifest); err != nil {
		a.writeAudit(ctx, sID, timestamp, lib_model.AuditValidationError, payload)
		return lib_model.SyncResult{}, lib_model.NewInvalidInputError(err)
	}
	result, err := a.syncHandler.Sync(ctx, sID, manifest, access.Authoritative, timestamp)
	if err != nil {
		var iie *lib_model.InvalidInputError
		if errors.As(err, &iie) {
			a.writeAudit(ctx, sID, timestamp, lib_model.AuditValidationError, payload)
		}
		return lib_model.SyncResult{}, err
	}
	a.writeAudit(ctx, sID, timestamp, lib_model.AuditSuccess, payload)
	return result, nil
}

func (a *Api) writeAudit(ctx context.Context, sID string, timestamp time.Time, status lib_model.AuditStatus, payload []byte) {
	record := lib_model.AuditRecord{
		Site:    sID,
		Time:    timestamp,
		Status:  status,
		Payload: string(payload),
	}
	if _, err := a.storageHandler.CreateAuditRecord(ctx, record); err != nil {
		util.Logger.Errorf("writing audit record for site '%s' failed: %s", sID, err)
	}
}
