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

import (
	"fmt"

	"github.com/staticdeploy/statichost/deployconfig"
	"github.com/staticdeploy/statichost/filetree"
)

// IndexFile is the directory index file name tried when a request addresses
// a directory (including the serving root itself) rather than a file.
const IndexFile = "index.html"

// Result is the outcome of resolving one request path: either a served file
// or not found. Not found is a normal result value, not an error; resolution
// itself cannot fail.
type Result struct {
	// Path is the served file's path below the serving root; it is
	// meaningful only when Served is true.
	Path string
	// Served reports whether a file was resolved at all.
	Served bool
}

// Deployment is one build's immutable FileTree, serving root, and compiled
// rewrite rule list. All fields are fixed at construction, so a Deployment
// may be shared by reference across arbitrarily many concurrent Resolve
// calls without any locking.
type Deployment struct {
	root     string
	tree     *filetree.Tree
	rules    []rule
	rewrites []deployconfig.Rewrite
}

// Option sets optional properties at the time of creating a Deployment.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrictValidation makes NewDeployment reject configurations that the
// default mode lets through as blanket not-found serving: rewrite sources
// that do not compile, structurally incomplete rewrites, and an explicit
// output directory that names a missing or empty directory. Use it when a
// failed deployment is preferable to a silently 404ing one.
func WithStrictValidation() Option {
	return func(o *options) {
		o.strict = true
	}
}

// NewDeployment fixes a deployment from its finalized file tree and its
// configuration: it selects the serving root, scopes the tree onto it, and
// compiles the rewrite rules, in that order, exactly once.
//
// A nil config is a valid empty configuration. In the default mode the
// returned error is always nil; misconfiguration yields a Deployment whose
// resolutions are not found, never a construction failure. Only
// WithStrictValidation turns misconfiguration into errors.
func NewDeployment(tree *filetree.Tree, cfg *deployconfig.Config, opts ...Option) (*Deployment, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	explicit := cfg.OutputDir()
	root := SelectOutputDir(tree, explicit)
	scoped := tree.Scope(root)
	if o.strict {
		if cfg != nil {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
		}
		if explicit != "" && !tree.HasDir(filetree.Normalize(explicit)) {
			return nil, fmt.Errorf("output directory %q does not exist in the deployment tree", explicit)
		}
		if explicit != "" && scoped.Len() == 0 {
			return nil, fmt.Errorf("output directory %q contains no files", explicit)
		}
	}
	var rewrites []deployconfig.Rewrite
	if cfg != nil {
		rewrites = cfg.Rewrites
	}
	rules, err := compileRules(rewrites, o.strict)
	if err != nil {
		return nil, err
	}
	return &Deployment{
		root:     root,
		tree:     scoped,
		rules:    rules,
		rewrites: rewrites,
	}, nil
}

// Root returns the selected serving root as configured or discovered: the
// verbatim outputDirectory override, "public", or "." for the top level.
func (d *Deployment) Root() string { return d.root }

// Rewrites returns the configured rewrite list in declaration order,
// including any rewrites that are inert because their source does not
// compile.
func (d *Deployment) Rewrites() []deployconfig.Rewrite { return d.rewrites }

// Tree returns the file tree scoped to the serving root.
func (d *Deployment) Tree() *filetree.Tree { return d.tree }

// TreePath rebases a resolved path below the deployment's serving root, for
// collaborators that address the original unscoped tree, such as a transport
// opening the file's bytes from the build output filesystem.
func (d *Deployment) TreePath(p string) string {
	root := filetree.Normalize(d.root)
	if root == "" {
		return p
	}
	return root + "/" + p
}

// Resolve maps one request path onto the file to serve, or not found. The
// request path is expected to be the decoded path component of the request,
// already relative to the serving root; Resolve normalizes it defensively
// anyway, so a raw "/about/" resolves the same as "about".
//
// Resolution is a pure function of the Deployment and the request path:
// first the rewrite rules get one shot, in declaration order with the first
// match winning, at substituting an effective lookup path; then the
// effective path is looked up as a file, falling back to the directory index
// when it addresses a directory; anything else is not found. Lookups are
// exact-by-byte, so a request differing from an existing file only in case
// is not found, just as on the underlying case-sensitive storage.
func (d *Deployment) Resolve(requestPath string) Result {
	lookup := filetree.Normalize(requestPath)
	if destination, ok := apply(d.rules, "/"+lookup); ok {
		lookup = filetree.Normalize(destination)
	}
	if d.tree.HasFile(lookup) {
		return Result{Path: lookup, Served: true}
	}
	if d.tree.HasDir(lookup) {
		index := IndexFile
		if lookup != "" {
			index = lookup + "/" + IndexFile
		}
		if d.tree.HasFile(index) {
			return Result{Path: index, Served: true}
		}
	}
	return Result{}
}
