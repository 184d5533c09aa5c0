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

package db_hdl

import (
	"bufio"
	"context"
	"database/sql"
	"github.com/CMS-Fleet/cms-update-manager/util"
	"io"
	"os"
	"strings"
	"time"
)

// InitDB waits for the database to become reachable and applies the schema
// file statement by statement inside one transaction. All statements are
// expected to be idempotent (CREATE TABLE IF NOT EXISTS ...).
func InitDB(ctx context.Context, db *sql.DB, schemaPath string, delay time.Duration) error {
	err := waitForDB(ctx, db, delay)
	if err != nil {
		return err
	}
	file, err := os.Open(schemaPath)
	if err != nil {
		return err
	}
	defer file.Close()
	reader := bufio.NewReader(file)
	var stmts []string
	for {
		stmt, err := reader.ReadString(';')
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		stmts = append(stmts, strings.TrimSuffix(stmt, ";"))
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range stmts {
		_, err = tx.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func waitForDB(ctx context.Context, db *sql.DB, delay time.Duration) error {
	err := db.PingContext(ctx)
	if err == nil {
		return nil
	} else {
		util.Logger.Error(err)
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err = db.PingContext(ctx)
			if err == nil {
				return nil
			} else {
				util.Logger.Error(err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
