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

// Package mod_ver orders extension version strings. Two conventions are
// accepted: plain 'MAJOR.MINOR.PATCH[-suffix]' and branch qualified
// 'BRANCH-MAJOR.MINOR[.PATCH][-suffix]' (e.g. '8.x-1.0'). Versions of
// different branches are not comparable for upgrade purposes, the total
// order across branches only exists for stable sorting.
package mod_ver

import (
	"fmt"
	"golang.org/x/mod/semver"
	"strconv"
	"strings"
)

type Version struct {
	Branch string
	Major  int
	Minor  int
	Patch  int
	Suffix string
	core   string
}

// Core returns the normalized semantic core, e.g. 'v1.2.0-beta1'.
func (v Version) Core() string {
	return v.core
}

// Parse never fails hard, the second return value reports whether s follows
// one of the two supported conventions.
func Parse(s string) (Version, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, false
	}
	var v Version
	rest := s
	if pos := strings.Index(s, "-"); pos > 0 && isBranch(s[:pos]) {
		v.Branch = s[:pos]
		rest = s[pos+1:]
	}
	numeric := rest
	if pos := strings.Index(rest, "-"); pos > 0 {
		numeric = rest[:pos]
		v.Suffix = rest[pos+1:]
		if v.Suffix == "" {
			return Version{}, false
		}
	}
	parts := strings.Split(numeric, ".")
	if len(parts) > 3 {
		return Version{}, false
	}
	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (len(p) > 1 && p[0] == '0') {
			return Version{}, false
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	v.core = fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix != "" {
		v.core += "-" + v.Suffix
	}
	if !semver.IsValid(v.core) {
		return Version{}, false
	}
	return v, true
}

func isBranch(s string) bool {
	if !strings.HasSuffix(s, ".x") {
		return false
	}
	n := s[:len(s)-2]
	if n == "" {
		return false
	}
	for _, c := range n {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Compare returns -1, 0 or 1. Unparseable strings sort strictly below any
// parseable version and among themselves lexicographically. Versions of
// different branches are ordered by branch string for sort stability only.
func Compare(a, b string) int {
	va, oka := Parse(a)
	vb, okb := Parse(b)
	if !oka && !okb {
		return strings.Compare(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	if !oka {
		return -1
	}
	if !okb {
		return 1
	}
	if va.Branch != vb.Branch {
		return strings.Compare(va.Branch, vb.Branch)
	}
	return semver.Compare(va.core, vb.core)
}

// SameBranch reports whether a and b may be compared for upgrade purposes.
func SameBranch(a, b Version) bool {
	return a.Branch == b.Branch
}

// OrderKey derives a sortable string persisted on catalog versions for SQL
// side ordering. Byte order follows Compare: class prefix '0' keeps
// unparseable strings below any parseable version, the unit separator keeps
// branch ordering intact and the '~' marker sorts a release above any
// pre-release suffix of the same numeric version.
func OrderKey(s string) string {
	v, ok := Parse(s)
	if !ok {
		return "0" + strings.TrimSpace(s)
	}
	suffix := "~"
	if v.Suffix != "" {
		suffix = encodeSuffix(v.Suffix)
	}
	return fmt.Sprintf("1%s\x1f%08d.%08d.%08d\x1f%s", v.Branch, v.Major, v.Minor, v.Patch, suffix)
}

// encodeSuffix rewrites pre-release identifiers so byte order matches semver
// precedence, numeric identifiers compare numerically and sort below
// alphanumeric ones.
func encodeSuffix(suffix string) string {
	ids := strings.Split(suffix, ".")
	for i, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n >= 0 {
			ids[i] = fmt.Sprintf("0%08d", n)
		} else {
			ids[i] = "1" + id
		}
	}
	return strings.Join(ids, "\x1f")
}
