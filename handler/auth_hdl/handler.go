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

package auth_hdl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"github.com/CMS-Fleet/cms-update-manager/handler"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	base_client "github.com/SENERGY-Platform/go-base-http-client"
	"net/http"
	"net/url"
	"time"
)

const accessPath = "access"

type Handler struct {
	baseClient *base_client.Client
	baseUrl    string
	timeout    time.Duration
}

type accessRequest struct {
	Token string `json:"token"`
	Site  string `json:"site,omitempty"`
	Scope string `json:"scope"`
}

type accessResponse struct {
	Allowed       bool `json:"allowed"`
	Authoritative bool `json:"authoritative"`
}

func New(httpClient base_client.HTTPClient, baseUrl string, timeout time.Duration) *Handler {
	return &Handler{
		baseClient: base_client.New(httpClient, customError, lib_model.HeaderRequestID),
		baseUrl:    baseUrl,
		timeout:    timeout,
	}
}

func (h *Handler) CheckSiteAccess(ctx context.Context, token, sID string) (handler.Access, error) {
	return h.check(ctx, accessRequest{Token: token, Site: sID, Scope: "site"})
}

func (h *Handler) CheckCatalogAccess(ctx context.Context, token string) (handler.Access, error) {
	return h.check(ctx, accessRequest{Token: token, Scope: "catalog"})
}

func (h *Handler) check(ctx context.Context, aReq accessRequest) (handler.Access, error) {
	u, err := url.JoinPath(h.baseUrl, accessPath)
	if err != nil {
		return handler.Access{}, lib_model.NewInternalError(err)
	}
	body, err := json.Marshal(aReq)
	if err != nil {
		return handler.Access{}, lib_model.NewInternalError(err)
	}
	c, cf := context.WithTimeout(ctx, h.timeout)
	defer cf()
	req, err := http.NewRequestWithContext(c, http.MethodPost, u, bytes.NewBuffer(body))
	if err != nil {
		return handler.Access{}, lib_model.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	var aRes accessResponse
	if err = h.baseClient.ExecRequestJSON(req, &aRes); err != nil {
		return handler.Access{}, wrapTransportErr(err)
	}
	return handler.Access{Allowed: aRes.Allowed, Authoritative: aRes.Authoritative}, nil
}

// wrapTransportErr classifies errors that never carried a response status,
// such as connection or timeout failures, as retryable.
func wrapTransportErr(err error) error {
	var fe *lib_model.ForbiddenError
	if errors.As(err, &fe) {
		return err
	}
	var iie *lib_model.InvalidInputError
	if errors.As(err, &iie) {
		return err
	}
	var te *lib_model.TransientError
	if errors.As(err, &te) {
		return err
	}
	return lib_model.NewTransientError(err)
}

func customError(code int, err error) error {
	switch {
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		err = lib_model.NewForbiddenError(err)
	case code == http.StatusBadRequest:
		err = lib_model.NewInvalidInputError(err)
	case code >= http.StatusInternalServerError:
		err = lib_model.NewTransientError(err)
	}
	return err
}
