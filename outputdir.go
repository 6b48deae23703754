// Copyright 2024 The statichost authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package statichost

import "github.com/staticdeploy/statichost/filetree"

// DefaultPublicDir is the conventionally named top-level directory that
// serving-root discovery prefers over the tree's top level.
const DefaultPublicDir = "public"

// TopLevelDir names the tree's own top level as a serving root.
const TopLevelDir = "."

// SelectOutputDir chooses the single serving root for a deployment without a
// framework build step. An explicit non-empty configuration value is used
// verbatim, with no check that it exists or holds any files; an absent or
// empty serving root is a valid, if degenerate, outcome that resolves every
// request to not found. Without an explicit value, a directory literally
// named "public" at the tree's top level wins, and failing that the top
// level itself.
//
// The selection is a pure function of its inputs and runs exactly one
// decision pass; it never recurses into nested "public" directories.
func SelectOutputDir(tree *filetree.Tree, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if tree.HasDir(DefaultPublicDir) {
		return DefaultPublicDir
	}
	return TopLevelDir
}
