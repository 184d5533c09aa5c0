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
	"fmt"
	"github.com/CMS-Fleet/cms-update-manager/lib"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/gin-gonic/gin"
	"net/http"
)

const (
	modNameParam = "m"
	versionParam = "v"
)

type modulesQuery struct {
	Names       string `form:"name"`
	DisplayName string `form:"display_name"`
	Category    string `form:"category"`
	SecUpdate   bool   `form:"sec_update"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

func getModulesH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		query := modulesQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		filter := lib_model.ModFilter{
			Names:       parseStringSlice(query.Names, ","),
			DisplayName: query.DisplayName,
			SecUpdate:   query.SecUpdate,
			Limit:       query.Limit,
			Offset:      query.Offset,
		}
		if query.Category != "" {
			if _, ok := lib_model.ModuleCategoryMap[query.Category]; !ok {
				_ = gc.Error(lib_model.NewInvalidInputError(fmt.Errorf("unknown category '%s'", query.Category)))
				return
			}
			filter.Category = query.Category
		}
		modules, err := a.GetModules(gc.Request.Context(), filter)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, modules)
	}
}

func getModuleH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		module, err := a.GetModule(gc.Request.Context(), gc.Param(modNameParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, module)
	}
}

func getModuleVersionsH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		versions, err := a.GetModuleVersions(gc.Request.Context(), gc.Param(modNameParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, versions)
	}
}

func patchVersionSecurityH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var patchReq lib_model.ModVersionPatchRequest
		if err := gc.ShouldBindJSON(&patchReq); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if !patchReq.Security {
			_ = gc.Error(lib_model.NewInvalidInputError(fmt.Errorf("security flag can only be raised")))
			return
		}
		jID, err := a.SetVersionSecurity(gc.Request.Context(), getToken(gc), gc.Param(modNameParam), gc.Param(versionParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}
