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

type ModuleCategory = string

// Module is one canonical extension known to the catalog, keyed by its
// machine-readable name.
type Module struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Category    ModuleCategory `json:"category"`
	Link        string         `json:"link"`
	Deleted     bool           `json:"deleted"`
	Added       time.Time      `json:"added"`
}

// ModuleVersion is one released version of a Module. Security relevance is an
// explicit catalog flag, never inferred from the version string.
type ModuleVersion struct {
	ID       string     `json:"id"`
	Module   string     `json:"module"`
	Version  string     `json:"version"`
	Released *time.Time `json:"released"`
	Security bool       `json:"security"`
	Deleted  bool       `json:"deleted"`
}

type ModFilter struct {
	Names       []string
	DisplayName string
	Category    ModuleCategory
	SecUpdate   bool
	Limit       int
	Offset      int
}

type ModVersionPatchRequest struct {
	Security bool `json:"security"`
}
