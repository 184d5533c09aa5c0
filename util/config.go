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

package util

import (
	"github.com/SENERGY-Platform/go-service-base/srv-base"
	"github.com/y-du/go-log-level/level"
)

type DatabaseConfig struct {
	Host       string `json:"host" env_var:"DB_HOST"`
	Port       uint   `json:"port" env_var:"DB_PORT"`
	User       string `json:"user" env_var:"DB_USER"`
	Passwd     string `json:"passwd" env_var:"DB_PASSWD"`
	Name       string `json:"name" env_var:"DB_NAME"`
	Timeout    int64  `json:"timeout" env_var:"DB_TIMEOUT"`
	SchemaPath string `json:"schema_path" env_var:"DB_SCHEMA_PATH"`
}

type IdentityConfig struct {
	BaseUrl string `json:"base_url" env_var:"IDENTITY_BASE_URL"`
	Timeout int64  `json:"timeout" env_var:"IDENTITY_TIMEOUT"`
}

type IngestConfig struct {
	MaxModules    int `json:"max_modules" env_var:"INGEST_MAX_MODULES"`
	MaxNameLen    int `json:"max_name_len" env_var:"INGEST_MAX_NAME_LEN"`
	MaxVersionLen int `json:"max_version_len" env_var:"INGEST_MAX_VERSION_LEN"`
}

type ScoringConfig struct {
	SecurityPenalty    int    `json:"security_penalty" env_var:"SCORE_SECURITY_PENALTY"`
	NonSecurityPenalty int    `json:"non_security_penalty" env_var:"SCORE_NON_SECURITY_PENALTY"`
	PolicyPath         string `json:"policy_path" env_var:"SCORE_POLICY_PATH"`
}

type JobsConfig struct {
	BufferSize  int   `json:"buffer_size" env_var:"JOBS_BUFFER_SIZE"`
	MaxNumber   int   `json:"max_number" env_var:"JOBS_MAX_NUMBER"`
	CCHInterval int   `json:"cch_interval" env_var:"JOBS_CCH_INTERVAL"`
	PJHInterval int   `json:"pjh_interval" env_var:"JOBS_PJH_INTERVAL"`
	MaxAge      int64 `json:"max_age" env_var:"JOBS_MAX_AGE"`
}

type Config struct {
	ServerPort uint                  `json:"server_port" env_var:"SERVER_PORT"`
	Logger     srv_base.LoggerConfig `json:"logger" env_var:"LOGGER_CONFIG"`
	Database   DatabaseConfig        `json:"database" env_var:"DATABASE_CONFIG"`
	Identity   IdentityConfig        `json:"identity" env_var:"IDENTITY_CONFIG"`
	Ingest     IngestConfig          `json:"ingest" env_var:"INGEST_CONFIG"`
	Scoring    ScoringConfig         `json:"scoring" env_var:"SCORING_CONFIG"`
	Jobs       JobsConfig            `json:"jobs" env_var:"JOBS_CONFIG"`
}

func NewConfig(path string) (*Config, error) {
	cfg := Config{
		ServerPort: 80,
		Logger: srv_base.LoggerConfig{
			Level:        level.Warning,
			Utc:          true,
			Microseconds: true,
			Terminal:     true,
		},
		Database: DatabaseConfig{
			Host:       "core-db",
			Port:       3306,
			Name:       "cms_update_manager",
			Timeout:    5000000000,
			SchemaPath: "include/storage_schema.sql",
		},
		Identity: IdentityConfig{
			BaseUrl: "http://identity-api",
			Timeout: 10000000000,
		},
		Ingest: IngestConfig{
			MaxModules:    512,
			MaxNameLen:    128,
			MaxVersionLen: 64,
		},
		Scoring: ScoringConfig{
			SecurityPenalty:    25,
			NonSecurityPenalty: 5,
		},
		Jobs: JobsConfig{
			BufferSize:  50,
			MaxNumber:   10,
			CCHInterval: 500000,
			PJHInterval: 500000,
			MaxAge:      3600000000,
		},
	}
	err := srv_base.LoadConfig(path, &cfg, nil, nil, nil)
	return &cfg, err
}
