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

const ServiceName = "cms-update-manager"

const (
	HeaderRequestID = "X-Request-ID"
	HeaderApiVer    = "X-Api-Version"
	HeaderSrvName   = "X-Service"
)

const (
	SitesPath        = "sites"
	SiteSyncPath     = "sync"
	SiteModulesPath  = "modules"
	PatchRunsPath    = "patch_runs"
	ModulesPath      = "modules"
	ModVersionsPath  = "versions"
	AuditRecordsPath = "audit_records"
	JobsPath         = "jobs"
	JobsCancelPath   = "cancel"
	HealthCheckPath  = "health_check"
)

const (
	ModuleCore    ModuleCategory = "core"
	ModuleContrib ModuleCategory = "contrib"
	ModuleCustom  ModuleCategory = "custom"
)

var ModuleCategoryMap = map[ModuleCategory]struct{}{
	ModuleCore:    {},
	ModuleContrib: {},
	ModuleCustom:  {},
}

const (
	AuditSuccess         AuditStatus = "success"
	AuditValidationError AuditStatus = "validation_error"
	AuditRejected        AuditStatus = "rejected"
)

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCanceled  JobStatus = "canceled"
	JobCompleted JobStatus = "completed"
	JobError     JobStatus = "error"
	JobOK        JobStatus = "ok"
)

var JobStateMap = map[JobStatus]struct{}{
	JobPending:   {},
	JobRunning:   {},
	JobCanceled:  {},
	JobCompleted: {},
	JobError:     {},
	JobOK:        {},
}
