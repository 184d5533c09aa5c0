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
	"github.com/CMS-Fleet/cms-update-manager/util"
	gin_mw "github.com/SENERGY-Platform/gin-middleware"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"strings"
)

func New(a lib.Api, staticHeader map[string]string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	httpHandler := gin.New()
	httpHandler.Use(gin_mw.StaticHeaderHandler(staticHeader), requestid.New(requestid.WithCustomHeaderStrKey(lib_model.HeaderRequestID)), gin_mw.LoggerHandler(util.Logger, []string{"/" + lib_model.HealthCheckPath}, func(gc *gin.Context) string {
		return requestid.Get(gc)
	}), gin_mw.ErrorHandler(util.GetStatusCode, ", "), gin.Recovery())
	httpHandler.UseRawPath = true
	SetRoutes(httpHandler, a)
	return httpHandler
}

func getToken(gc *gin.Context) string {
	token := gc.GetHeader("Authorization")
	return strings.TrimPrefix(token, "Bearer ")
}
