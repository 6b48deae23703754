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

/*
Package filetree models the finalized file tree of a deployment as an
immutable set of normalized relative paths. A Tree is built exactly once, at
deployment build time, and is then only ever read; it can therefore be shared
by reference across any number of concurrently resolving requests without
locking.

Path membership is exact and case-sensitive: "Index.html" and "index.html"
are different entries, just as they are on the underlying object storage.
*/
package filetree

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Tree is an immutable deployment file tree. The zero value is not usable;
// construct a Tree with New or FromFS.
type Tree struct {
	files map[string]struct{}
	dirs  map[string]struct{}
}

// Normalize turns an arbitrary slash-separated path into the tree's canonical
// relative form: no leading or trailing separators, no "." or ".." segments,
// with parent references clamped at the top level so they can never escape the
// tree. The top level itself normalizes to "".
func Normalize(p string) string {
	// Rooting the path before cleaning keeps ".." from climbing above the
	// tree and sidesteps path.Clean's "." result for empty input.
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// New returns a Tree containing exactly the given file paths, each normalized
// first, plus every parent directory they imply. Empty paths are ignored.
// This is the constructor of choice for deployment manifests and tests.
func New(paths ...string) *Tree {
	t := &Tree{
		files: map[string]struct{}{},
		dirs:  map[string]struct{}{"": {}},
	}
	for _, p := range paths {
		t.addFile(Normalize(p))
	}
	return t
}

// FromFS walks the given filesystem and returns the Tree of all regular files
// and directories found in it. Use os.DirFS to ingest a build output directory
// from the OS file system, or an embed.FS for deployments baked into the
// binary.
func FromFS(fsys fs.FS) (*Tree, error) {
	t := New()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking deployment tree: %w", err)
		}
		if d.IsDir() {
			t.dirs[Normalize(p)] = struct{}{}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil // sockets, device nodes, and friends never deploy.
		}
		t.addFile(Normalize(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) addFile(p string) {
	if p == "" {
		return
	}
	t.files[p] = struct{}{}
	for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
		t.dirs[dir] = struct{}{}
	}
}

// HasFile reports whether the normalized path p is a file in the tree. The
// comparison is exact; a path differing only in case is not a match.
func (t *Tree) HasFile(p string) bool {
	_, ok := t.files[p]
	return ok
}

// HasDir reports whether the normalized path p is a directory in the tree.
// The top level "" always is.
func (t *Tree) HasDir(p string) bool {
	_, ok := t.dirs[p]
	return ok
}

// Scope returns the subtree rooted at the given directory, with all paths
// rebased onto it. Both "" and "." select the whole tree. A root that does
// not exist in the tree yields the empty Tree: every lookup in it fails,
// which is exactly the degenerate blanket-404 serving root.
func (t *Tree) Scope(root string) *Tree {
	root = Normalize(root)
	if root == "" {
		return t
	}
	sub := New()
	if !t.HasDir(root) {
		return sub
	}
	prefix := root + "/"
	for f := range t.files {
		if strings.HasPrefix(f, prefix) {
			sub.files[strings.TrimPrefix(f, prefix)] = struct{}{}
		}
	}
	for d := range t.dirs {
		if strings.HasPrefix(d, prefix) {
			sub.dirs[strings.TrimPrefix(d, prefix)] = struct{}{}
		}
	}
	return sub
}

// Files returns all file paths in the tree, sorted.
func (t *Tree) Files() []string {
	files := make([]string, 0, len(t.files))
	for f := range t.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Len returns the number of files in the tree.
func (t *Tree) Len() int { return len(t.files) }
