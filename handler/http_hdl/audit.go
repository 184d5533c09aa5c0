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

type auditQuery struct {
	Site   string `form:"site"`
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

func getAuditRecordsH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		query := auditQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		filter := lib_model.AuditFilter{Site: query.Site, Limit: query.Limit}
		if query.Status != "" {
			switch query.Status {
			case lib_model.AuditSuccess, lib_model.AuditValidationError, lib_model.AuditRejected:
				filter.Status = query.Status
			default:
				_ = gc.Error(lib_model.NewInvalidInputError(fmt.Errorf("unknown audit status '%s'", query.Status)))
				return
			}
		}
		records, err := a.GetAuditRecords(gc.Request.Context(), filter)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, records)
	}
}
