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
	"database/sql/driver"
	"errors"
	"github.com/CMS-Fleet/cms-update-manager/handler"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"github.com/CMS-Fleet/cms-update-manager/util"
	"github.com/SENERGY-Platform/go-service-base/srv-base"
	"github.com/y-du/go-log-level/level"
	"testing"
	"time"
)

func TestApi_SubmitManifest(t *testing.T) {
	initTestLogger(t)
	stgHdlMock := &auditStorageMock{}
	authHdlMock := &authHandlerMock{Allowed: true}
	syncHdlMock := &syncHandlerMock{Result: lib_model.SyncResult{Changed: true, ModulesUpdated: 1}}
	a := New(stgHdlMock, nil, syncHdlMock, authHdlMock, nil)
	payload := []byte(`{"platform":"drupal","modules":[]}`)
	result, err := a.SubmitManifest(context.Background(), "token", "site-1", payload)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Changed || result.ModulesUpdated != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(stgHdlMock.Audits) != 1 {
		t.Fatalf("expected 1 audit record but got %d", len(stgHdlMock.Audits))
	}
	record := stgHdlMock.Audits[0]
	if record.Status != lib_model.AuditSuccess {
		t.Errorf("expected status success but got '%s'", record.Status)
	}
	if record.Payload != string(payload) {
		t.Errorf("payload not preserved: '%s'", record.Payload)
	}
	t.Run("access denied", func(t *testing.T) {
		authHdlMock.Allowed = false
		_, err = a.SubmitManifest(context.Background(), "token", "site-1", payload)
		var fe *lib_model.ForbiddenError
		if !errors.As(err, &fe) {
			t.Errorf("expected forbidden error but got %v", err)
		}
		record = stgHdlMock.Audits[len(stgHdlMock.Audits)-1]
		if record.Status != lib_model.AuditRejected {
			t.Errorf("expected status rejected but got '%s'", record.Status)
		}
	})
	t.Run("validation error", func(t *testing.T) {
		authHdlMock.Allowed = true
		syncHdlMock.Err = lib_model.NewInvalidInputError(errors.New("module name missing"))
		_, err = a.SubmitManifest(context.Background(), "token", "site-1", payload)
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Errorf("expected invalid input error but got %v", err)
		}
		record = stgHdlMock.Audits[len(stgHdlMock.Audits)-1]
		if record.Status != lib_model.AuditValidationError {
			t.Errorf("expected status validation_error but got '%s'", record.Status)
		}
	})
	t.Run("malformed payload", func(t *testing.T) {
		syncHdlMock.Err = nil
		syncHdlMock.Calls = 0
		raw := []byte(`{"platform":"drupal","modules":[`)
		_, err = a.SubmitManifest(context.Background(), "token", "site-1", raw)
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Errorf("expected invalid input error but got %v", err)
		}
		if syncHdlMock.Calls != 0 {
			t.Error("sync should not run for a malformed payload")
		}
		record = stgHdlMock.Audits[len(stgHdlMock.Audits)-1]
		if record.Status != lib_model.AuditValidationError {
			t.Errorf("expected status validation_error but got '%s'", record.Status)
		}
		if record.Payload != string(raw) {
			t.Errorf("payload not preserved: '%s'", record.Payload)
		}
	})
	t.Run("internal error without audit", func(t *testing.T) {
		n := len(stgHdlMock.Audits)
		syncHdlMock.Err = lib_model.NewInternalError(errors.New("db gone"))
		if _, err = a.SubmitManifest(context.Background(), "token", "site-1", payload); err == nil {
			t.Error("expected error")
		}
		if len(stgHdlMock.Audits) != n {
			t.Error("unexpected audit record")
		}
	})
	t.Run("identity unavailable", func(t *testing.T) {
		n := len(stgHdlMock.Audits)
		authHdlMock.Err = lib_model.NewTransientError(errors.New("identity api unreachable"))
		_, err = a.SubmitManifest(context.Background(), "token", "site-1", payload)
		var te *lib_model.TransientError
		if !errors.As(err, &te) {
			t.Errorf("expected transient error but got %v", err)
		}
		if len(stgHdlMock.Audits) != n {
			t.Error("unexpected audit record")
		}
	})
}

func initTestLogger(t *testing.T) {
	t.Helper()
	if util.Logger == nil {
		if _, err := util.InitLogger(srv_base.LoggerConfig{Level: level.Error, Terminal: true}); err != nil {
			t.Fatal(err)
		}
	}
}

// ------------------------------

type authHandlerMock struct {
	Err           error
	Allowed       bool
	Authoritative bool
}

func (m *authHandlerMock) CheckSiteAccess(_ context.Context, _, _ string) (handler.Access, error) {
	if m.Err != nil {
		return handler.Access{}, m.Err
	}
	return handler.Access{Allowed: m.Allowed, Authoritative: m.Authoritative}, nil
}

func (m *authHandlerMock) CheckCatalogAccess(_ context.Context, _ string) (handler.Access, error) {
	if m.Err != nil {
		return handler.Access{}, m.Err
	}
	return handler.Access{Allowed: m.Allowed, Authoritative: m.Authoritative}, nil
}

type syncHandlerMock struct {
	Err    error
	Result lib_model.SyncResult
	Calls  int
}

func (m *syncHandlerMock) Sync(_ context.Context, _ string, _ lib_model.Manifest, _ bool, _ time.Time) (lib_model.SyncResult, error) {
	m.Calls++
	if m.Err != nil {
		return lib_model.SyncResult{}, m.Err
	}
	return m.Result, nil
}

func (m *syncHandlerMock) Recompute(_ context.Context, _ string, _ time.Time) error {
	return m.Err
}

type auditStorageMock struct {
	Err    error
	Audits []lib_model.AuditRecord
}

func (m *auditStorageMock) CreateAuditRecord(_ context.Context, record lib_model.AuditRecord) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	record.ID = "audit"
	m.Audits = append(m.Audits, record)
	return record.ID, nil
}

func (m *auditStorageMock) ListAuditRecords(_ context.Context, _ lib_model.AuditFilter) ([]lib_model.AuditRecord, error) {
	return m.Audits, nil
}

func (m *auditStorageMock) BeginTransaction(_ context.Context) (driver.Tx, error) {
	return nil, errors.New("not implemented")
}

func (m *auditStorageMock) ListModules(_ context.Context, _ lib_model.ModFilter) ([]lib_model.Module, error) {
	return nil, errors.New("not implemented")
}

func (m *auditStorageMock) ReadModule(_ context.Context, _ string) (lib_model.Module, error) {
	return lib_model.Module{}, errors.New("not implemented")
}

func (m *auditStorageMock) CreateModule(_ context.Context, _ driver.Tx, _ lib_model.Module) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) UpdateModuleMeta(_ context.Context, _ driver.Tx, _ lib_model.Module) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) ListVersions(_ context.Context, _ string) ([]lib_model.ModuleVersion, error) {
	return nil, errors.New("not implemented")
}

func (m *auditStorageMock) ReadVersion(_ context.Context, _, _ string) (lib_model.ModuleVersion, error) {
	return lib_model.ModuleVersion{}, errors.New("not implemented")
}

func (m *auditStorageMock) CreateVersion(_ context.Context, _ driver.Tx, _ lib_model.ModuleVersion) (string, error) {
	return "", errors.New("not implemented")
}

func (m *auditStorageMock) SetVersionSecurity(_ context.Context, _, _ string) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) ReadSite(_ context.Context, _ string) (lib_model.Site, error) {
	return lib_model.Site{}, errors.New("not implemented")
}

func (m *auditStorageMock) LockSite(_ context.Context, _ driver.Tx, _ string) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) UpdateSiteStats(_ context.Context, _ driver.Tx, _ lib_model.Site) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) ListSiteModules(_ context.Context, _ string) ([]lib_model.SiteModule, error) {
	return nil, errors.New("not implemented")
}

func (m *auditStorageMock) ListSitesWithModule(_ context.Context, _ string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *auditStorageMock) CreateSiteModule(_ context.Context, _ driver.Tx, _ lib_model.SiteModule) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) UpdateSiteModule(_ context.Context, _ driver.Tx, _ lib_model.SiteModule) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) DeleteSiteModule(_ context.Context, _ driver.Tx, _, _ string) error {
	return errors.New("not implemented")
}

func (m *auditStorageMock) CreatePatchRun(_ context.Context, _ driver.Tx, _ lib_model.PatchRun) (string, error) {
	return "", errors.New("not implemented")
}

func (m *auditStorageMock) ListPatchRuns(_ context.Context, _ string, _ lib_model.PatchRunFilter) ([]lib_model.PatchRun, error) {
	return nil, errors.New("not implemented")
}
