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

package scoring_hdl

import (
	"fmt"
	lib_model "github.com/CMS-Fleet/cms-update-manager/lib/model"
	"gopkg.in/yaml.v3"
	"os"
)

// Penalty weights are policy, not algorithm. They come from the service
// config and may be overridden by an external policy file without a rebuild.
type Handler struct {
	securityPenalty    int
	nonSecurityPenalty int
}

type policy struct {
	SecurityPenalty    *int `yaml:"security_penalty"`
	NonSecurityPenalty *int `yaml:"non_security_penalty"`
}

func New(securityPenalty, nonSecurityPenalty int, policyPath string) (*Handler, error) {
	h := &Handler{
		securityPenalty:    securityPenalty,
		nonSecurityPenalty: nonSecurityPenalty,
	}
	if policyPath != "" {
		file, err := os.Open(policyPath)
		if err != nil {
			return nil, fmt.Errorf("reading scoring policy: %w", err)
		}
		defer file.Close()
		var p policy
		if err = yaml.NewDecoder(file).Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing scoring policy: %w", err)
		}
		if p.SecurityPenalty != nil {
			h.securityPenalty = *p.SecurityPenalty
		}
		if p.NonSecurityPenalty != nil {
			h.nonSecurityPenalty = *p.NonSecurityPenalty
		}
	}
	if h.securityPenalty < 0 || h.nonSecurityPenalty < 0 {
		return nil, fmt.Errorf("negative penalty weight")
	}
	return h, nil
}

// Score starts at 100 and subtracts the configured penalty per module with a
// pending security update and the smaller penalty per module with a pending
// non-security update, clamped to [0, 100].
func (h *Handler) Score(siteModules []lib_model.SiteModule) int {
	_, security, nonSecurity := h.Stats(siteModules)
	score := 100 - security*h.securityPenalty - nonSecurity*h.nonSecurityPenalty
	if score < 0 {
		score = 0
	}
	return score
}

func (h *Handler) Stats(siteModules []lib_model.SiteModule) (total, security, nonSecurity int) {
	for _, sm := range siteModules {
		total++
		if sm.SecUpdateAvailable {
			security++
		} else if sm.UpdateAvailable {
			nonSecurity++
		}
	}
	return
}
