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

// Site identity and organisational membership are owned by the external CRUD
// layer. This service only writes the aggregate counters and the score.
type Site struct {
	ID                  string    `json:"id"`
	URL                 string    `json:"url"`
	Name                string    `json:"name"`
	ModuleCount         int       `json:"module_count"`
	UpdateCount         int       `json:"update_count"`
	SecurityUpdateCount int       `json:"security_update_count"`
	Score               int       `json:"score"`
	Deleted             bool      `json:"deleted"`
	Updated             time.Time `json:"updated"`
}

// SiteModule is the current installed state of one module on one site.
// History is not kept here, it lives in patch runs.
type SiteModule struct {
	Site               string    `json:"site"`
	Module             string    `json:"module"`
	VersionID          string    `json:"version_id"`
	Version            string    `json:"version"`
	Enabled            bool      `json:"enabled"`
	UpdateAvailable    bool      `json:"update_available"`
	SecUpdateAvailable bool      `json:"security_update_available"`
	Updated            time.Time `json:"updated"`
}

// ModuleReport is one entry of a site's manifest submission.
type ModuleReport struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Category    ModuleCategory `json:"category"`
	Link        string         `json:"link"`
	Version     string         `json:"version"`
	Enabled     bool           `json:"enabled"`
	Released    *time.Time     `json:"released"`
	Security    *bool          `json:"security"`
}

// Manifest is the full list of modules a site reports in one submission.
type Manifest struct {
	Platform        string         `json:"platform"`
	PlatformVersion string         `json:"platform_version"`
	Modules         []ModuleReport `json:"modules"`
}

type SyncResult struct {
	Changed                bool `json:"changed"`
	ModulesUpdated         int  `json:"modules_updated"`
	SecurityPatchesApplied int  `json:"security_patches_applied"`
}
