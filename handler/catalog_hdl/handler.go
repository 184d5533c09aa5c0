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

package catalog_hdl

import (
	"context"
	"errors"
	"fmt"
	"github.com/CMS-Fleet/cms-update-manager/handler"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/SENERGY-Platform/go-service-base/context-hdl"
	"time"
)

type Handler struct {
	storageHandler handler.StorageHandler
	dbTimeout      time.Duration
	maxNameLen     int
	maxVersionLen  int
}

func New(storageHandler handler.StorageHandler, dbTimeout time.Duration, maxNameLen, maxVersionLen int) *Handler {
	return &Handler{
		storageHandler: storageHandler,
		dbTimeout:      dbTimeout,
		maxNameLen:     maxNameLen,
		maxVersionLen:  maxVersionLen,
	}
}

func (h *Handler) Validate(report lib_model.ModuleReport) error {
	if report.Name == "" {
		return lib_model.NewInvalidInputError(errors.New("module name missing"))
	}
	if len(report.Name) > h.maxNameLen {
		return lib_model.NewInvalidInputError(fmt.Errorf("module '%s': name exceeds %d characters", report.Name, h.maxNameLen))
	}
	if report.Version == "" {
		return lib_model.NewInvalidInputError(fmt.Errorf("module '%s': version missing", report.Name))
	}
	if len(report.Version) > h.maxVersionLen {
		return lib_model.NewInvalidInputError(fmt.Errorf("module '%s': version exceeds %d characters", report.Name, h.maxVersionLen))
	}
	if report.Category != "" {
		if _, ok := lib_model.ModuleCategoryMap[report.Category]; !ok {
			return lib_model.NewInvalidInputError(fmt.Errorf("module '%s': unknown category '%s'", report.Name, report.Category))
		}
	}
	return nil
}

// Reconcile finds or creates the canonical module and version rows for one
// report. Creation races with other synchronizations are resolved by
// re-reading the row the concurrent writer inserted, the catalog is never
// locked globally.
func (h *Handler) Reconcile(ctx context.Context, report lib_model.ModuleReport, authoritative bool) (lib_model.Module, lib_model.ModuleVersion, error) {
	if err := h.Validate(report); err != nil {
		return lib_model.Module{}, lib_model.ModuleVersion{}, err
	}
	mod, err := h.reconcileModule(ctx, report)
	if err != nil {
		return lib_model.Module{}, lib_model.ModuleVersion{}, err
	}
	version, err := h.reconcileVersion(ctx, report, authoritative)
	if err != nil {
		return lib_model.Module{}, lib_model.ModuleVersion{}, err
	}
	return mod, version, nil
}

func (h *Handler) reconcileModule(ctx context.Context, report lib_model.ModuleReport) (lib_model.Module, error) {
	ch := context_hdl.New()
	defer ch.CancelAll()
	mod, err := h.storageHandler.ReadModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), report.Name)
	if err != nil {
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			return lib_model.Module{}, err
		}
		mod = lib_model.Module{
			Name:        report.Name,
			DisplayName: report.DisplayName,
			Category:    report.Category,
			Link:        report.Link,
			Added:       time.Now().UTC(),
		}
		if mod.Category == "" {
			mod.Category = lib_model.ModuleCustom
		}
		err = h.storageHandler.CreateModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), nil, mod)
		if err != nil {
			var ce *lib_model.ConflictError
			if !errors.As(err, &ce) {
				return lib_model.Module{}, err
			}
			// concurrent writer created the row first, reuse it
			return h.storageHandler.ReadModule(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), report.Name)
		}
		return mod, nil
	}
	if enrichModule(&mod, report) {
		if err = h.storageHandler.UpdateModuleMeta(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), nil, mod); err != nil {
			return lib_model.Module{}, err
		}
	}
	return mod, nil
}

func (h *Handler) reconcileVersion(ctx context.Context, report lib_model.ModuleReport, authoritative bool) (lib_model.ModuleVersion, error) {
	ch := context_hdl.New()
	defer ch.CancelAll()
	security := authoritative && report.Security != nil && *report.Security
	version, err := h.storageHandler.ReadVersion(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), report.Name, report.Version)
	if err != nil {
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			return lib_model.ModuleVersion{}, err
		}
		version = lib_model.ModuleVersion{
			Module:   report.Name,
			Version:  report.Version,
			Released: report.Released,
			Security: security,
		}
		version.ID, err = h.storageHandler.CreateVersion(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), nil, version)
		if err != nil {
			var ce *lib_model.ConflictError
			if !errors.As(err, &ce) {
				return lib_model.ModuleVersion{}, err
			}
			version, err = h.storageHandler.ReadVersion(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), report.Name, report.Version)
			if err != nil {
				return lib_model.ModuleVersion{}, err
			}
		} else {
			return version, nil
		}
	}
	if security && !version.Security {
		if err = h.storageHandler.SetVersionSecurity(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), report.Name, report.Version); err != nil {
			return lib_model.ModuleVersion{}, err
		}
		version.Security = true
	}
	return version, nil
}

// enrichModule fills descriptive fields a previous submission left empty,
// populated fields are first-writer-wins.
func enrichModule(mod *lib_model.Module, report lib_model.ModuleReport) bool {
	changed := false
	if mod.DisplayName == "" && report.DisplayName != "" {
		mod.DisplayName = report.DisplayName
		changed = true
	}
	if mod.Category == "" && report.Category != "" {
		mod.Category = report.Category
		changed = true
	}
	if mod.Link == "" && report.Link != "" {
		mod.Link = report.Link
		changed = true
	}
	return changed
}
