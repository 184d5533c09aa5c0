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
	"github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/gin-gonic/gin"
	"sort"
)

func SetRoutes(e *gin.Engine, a lib.Api) {
	e.POST("/"+model.SitesPath+"/:"+siteIdParam+"/"+model.SiteSyncPath, postSiteSyncH(a))
	e.GET("/"+model.SitesPath+"/:"+siteIdParam, getSiteH(a))
	e.GET("/"+model.SitesPath+"/:"+siteIdParam+"/"+model.SiteModulesPath, getSiteModulesH(a))
	e.GET("/"+model.SitesPath+"/:"+siteIdParam+"/"+model.PatchRunsPath, getPatchRunsH(a))
	e.GET("/"+model.ModulesPath, getModulesH(a))
	e.GET("/"+model.ModulesPath+"/:"+modNameParam, getModuleH(a))
	e.GET("/"+model.ModulesPath+"/:"+modNameParam+"/"+model.ModVersionsPath, getModuleVersionsH(a))
	e.PATCH("/"+model.ModulesPath+"/:"+modNameParam+"/"+model.ModVersionsPath+"/:"+versionParam, patchVersionSecurityH(a))
	e.GET("/"+model.AuditRecordsPath, getAuditRecordsH(a))
	e.GET("/"+model.JobsPath, getJobsH(a))
	e.GET("/"+model.JobsPath+"/:"+jobIdParam, getJobH(a))
	e.PATCH("/"+model.JobsPath+"/:"+jobIdParam+"/"+model.JobsCancelPath, patchJobCancelH(a))
	e.GET("/"+model.HealthCheckPath, getServiceHealthH(a))
}

func GetRoutes(e *gin.Engine) [][2]string {
	routes := e.Routes()
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})
	var rInfo [][2]string
	for _, info := range routes {
		rInfo = append(rInfo, [2]string{info.Method, info.Path})
	}
	return rInfo
}
