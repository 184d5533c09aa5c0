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

package http_hdl

import (
	"github.com/CMS-Fleet/cms-update-manager/lib"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
	"time"
)

const siteIdParam = "s"

type patchRunsQuery struct {
	Since string `form:"since"`
	Until string `form:"until"`
	Limit int    `form:"limit"`
}

func postSiteSyncH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		payload, err := io.ReadAll(gc.Request.Body)
		if err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		result, err := a.SubmitManifest(gc.Request.Context(), getToken(gc), gc.Param(siteIdParam), payload)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, result)
	}
}

func getSiteH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		site, err := a.GetSite(gc.Request.Context(), gc.Param(siteIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, site)
	}
}

func getSiteModulesH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		siteModules, err := a.GetSiteModules(gc.Request.Context(), gc.Param(siteIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, siteModules)
	}
}

func getPatchRunsH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		query := patchRunsQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		filter := lib_model.PatchRunFilter{Limit: query.Limit}
		if query.Since != "" {
			t, err := time.Parse(time.RFC3339Nano, query.Since)
			if err != nil {
				_ = gc.Error(lib_model.NewInvalidInputError(err))
				return
			}
			filter.Since = t
		}
		if query.Until != "" {
			t, err := time.Parse(time.RFC3339Nano, query.Until)
			if err != nil {
				_ = gc.Error(lib_model.NewInvalidInputError(err))
				return
			}
			filter.Until = t
		}
		patchRuns, err := a.GetPatchRuns(gc.Request.Context(), gc.Param(siteIdParam), filter)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, patchRuns)
	}
}
