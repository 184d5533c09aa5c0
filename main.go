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

package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/CMS-Fleet/cms-update-manager/api"
	"github.com/CMS-Fleet/cms-update-manager/handler/auth_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/catalog_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/http_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/job_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/scoring_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/storage_hdl"
	"github.com/CMS-Fleet/cms-update-manager/handler/sync_hdl"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/CMS-Fleet/cms-update-manager/util"
	"github.com/CMS-Fleet/cms-update-manager/util/db_hdl"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	sb_logger "github.com/SENERGY-Platform/go-service-base/logger"
	"github.com/SENERGY-Platform/go-service-base/srv-base"
	"github.com/SENERGY-Platform/go-service-base/srv-base/types"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

var version string

func main() {
	srv_base.PrintInfo(lib_model.ServiceName, version)

	flags := util.NewFlags()

	config, err := util.NewConfig(flags.ConfPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logFile, err := util.InitLogger(config.Logger)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		var logFileError *sb_logger.LogFileError
		if errors.As(err, &logFileError) {
			os.Exit(1)
		}
	}
	if logFile != nil {
		defer logFile.Close()
	}

	util.Logger.Debugf("config: %s", srv_base.ToJsonStr(config))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := util.InitDB(ctx, config.Database.Host, config.Database.Port, config.Database.User, config.Database.Passwd, config.Database.Name, 10, 10, time.Duration(config.Database.Timeout))
	if err != nil {
		util.Logger.Error(err)
		return
	}
	defer db.Close()

	if err = db_hdl.InitDB(ctx, db, config.Database.SchemaPath, time.Second*5); err != nil {
		util.Logger.Error(err)
		return
	}

	dbTimeout := time.Duration(config.Database.Timeout)

	storageHandler := storage_hdl.New(db)
	catalogHandler := catalog_hdl.New(storageHandler, dbTimeout, config.Ingest.MaxNameLen, config.Ingest.MaxVersionLen)
	scoringHandler, err := scoring_hdl.New(config.Scoring.SecurityPenalty, config.Scoring.NonSecurityPenalty, config.Scoring.PolicyPath)
	if err != nil {
		util.Logger.Error(err)
		return
	}
	syncHandler := sync_hdl.New(storageHandler, catalogHandler, scoringHandler, dbTimeout, config.Ingest.MaxModules)
	authHandler := auth_hdl.New(&http.Client{}, config.Identity.BaseUrl, time.Duration(config.Identity.Timeout))

	ccHandler := ccjh.New(config.Jobs.BufferSize)
	defer ccHandler.Stop()

	jobCtx, jobCF := context.WithCancel(context.Background())
	defer jobCF()

	jobHandler := job_hdl.New(jobCtx, ccHandler)

	go func() {
		ticker := time.NewTicker(time.Duration(config.Jobs.PJHInterval * 1000))
		defer ticker.Stop()
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-ticker.C:
				if n := jobHandler.PurgeJobs(time.Duration(config.Jobs.MaxAge)); n > 0 {
					util.Logger.Debugf("purged %d jobs", n)
				}
			}
		}
	}()

	if err = ccHandler.RunAsync(config.Jobs.MaxNumber, time.Duration(config.Jobs.CCHInterval*1000)); err != nil {
		util.Logger.Error(err)
		return
	}

	mApi := api.New(storageHandler, catalogHandler, syncHandler, authHandler, jobHandler)

	httpHandler := http_hdl.New(mApi, map[string]string{
		lib_model.HeaderApiVer:  version,
		lib_model.HeaderSrvName: lib_model.ServiceName,
	})

	util.Logger.Debugf("routes: %s", srv_base.ToJsonStr(http_hdl.GetRoutes(httpHandler)))

	listener, err := net.Listen("tcp", ":"+strconv.FormatInt(int64(config.ServerPort), 10))
	if err != nil {
		util.Logger.Error(err)
		return
	}
	srv_base.StartServer(&http.Server{Handler: httpHandler}, listener, srv_base_types.DefaultShutdownSignals, util.Logger)
}
