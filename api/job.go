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
	"context"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
)

func (a *Api) GetJobs(_ context.Context, filter lib_model.JobFilter) ([]lib_model.Job, error) {
	return a.jobHandler.List(filter), nil
}

func (a *Api) GetJob(_ context.Context, jID string) (lib_model.Job, error) {
	return a.jobHandler.Get(jID)
}

func (a *Api) CancelJob(_ context.Context, jID string) error {
	return a.jobHandler.Cancel(jID)
}
