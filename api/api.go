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
	"github.com/CMS-Fleet/cms-update-manager/handler"
)

type Api struct {
	storageHandler handler.StorageHandler
	catalogHandler handler.CatalogHandler
	syncHandler    handler.SyncHandler
	authHandler    handler.AuthHandler
	jobHandler     handler.JobHandler
}

func New(storageHandler handler.StorageHandler, catalogHandler handler.CatalogHandler, syncHandler handler.SyncHandler, authHandler handler.AuthHandler, jobHandler handler.JobHandler) *Api {
	return &Api{
		storageHandler: storageHandler,
		catalogHandler: catalogHandler,
		syncHandler:    syncHandler,
		authHandler:    authHandler,
		jobHandler:     jobHandler,
	}
}
