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

package model

import "time"

// PatchRun is an immutable snapshot of one inventory-changing
// synchronization, the unit of historical trend reporting.
type PatchRun struct {
	ID              string    `json:"id"`
	Site            string    `json:"site"`
	Time            time.Time `json:"time"`
	ModulesUpdated  int       `json:"modules_updated"`
	SecurityPatches int       `json:"security_patches"`
}

type PatchRunFilter struct {
	Since time.Time
	Until time.Time
	Limit int
}

type AuditStatus = string

// AuditRecord keeps the raw inbound manifest and its processing status for
// replay and diagnosis.
type AuditRecord struct {
	ID      string      `json:"id"`
	Site    string      `json:"site"`
	Time    time.Time   `json:"time"`
	Status  AuditStatus `json:"status"`
	Payload string      `json:"payload"`
}

type AuditFilter struct {
	Site   string
	Status AuditStatus
	Limit  int
}
