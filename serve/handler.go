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
Package serve is the HTTP transport collaborator of a static deployment: an
http.Handler that feeds request paths into a statichost.Deployment and
translates the resolutions into responses, serving resolved files from any
fs.FS and answering not-found resolutions with a plain 404.

Served HTML files get their base element rewritten on the fly to the base
path the client actually requested, derived from the usual forwarding proxy
headers. A deployment therefore serves correctly behind path-rewriting
reverse proxies without rebuilding, whatever prefix it ends up mounted on.
*/
package serve

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/staticdeploy/statichost"
)

// ForwardedPrefixHeader, if present, specifies the prefix that was stripped
// from the request's URI path by a path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedURIHeader, if present, specifies the original URI (or with some
// proxies only the original URI path) of a request before path rewriting.
const ForwardedURIHeader = "X-Forwarded-Uri"

// baseRe matches an HTML base element so its href can be rewritten to the
// base path a request actually arrived under. Rewriting the markup textually
// keeps the deployed HTML fully usable without any serving layer in front,
// such as during local development straight off the build output.
//
// "*?" instead of "*" keeps the expression from gobbling everything up to
// the last empty element in the document.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/>)`)

// HTMLRewriter rewrites (parts of) a served HTML file's contents right
// before delivery, after the base element has been updated. Activate it with
// the WithHTMLRewriter option.
type HTMLRewriter func(r *http.Request, html string) string

// Handler implements http.Handler on top of a Deployment, serving the
// resolved files from the deployment's build output filesystem.
type Handler struct {
	deployment *statichost.Deployment
	fsys       fs.FS
	rewriter   HTMLRewriter
}

// Option sets optional properties at the time of creating a Handler.
type Option func(*Handler)

// WithHTMLRewriter sets an HTMLRewriter that gets called on every served
// HTML file, allowing for application-specific changes such as injecting
// per-request configuration.
func WithHTMLRewriter(rewriter HTMLRewriter) Option {
	return func(h *Handler) {
		h.rewriter = rewriter
	}
}

// New returns a Handler serving the given deployment. The fsys is the
// deployment's full build output tree, as uploaded, not yet scoped to the
// serving root; the handler rebases resolved paths onto it itself. To serve
// a build output directory from the OS file system:
//
//	h := serve.New(os.DirFS("/opt/builds/deadbeef"), deployment)
func New(fsys fs.FS, deployment *statichost.Deployment, opts ...Option) *Handler {
	h := &Handler{
		deployment: deployment,
		fsys:       fsys,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP resolves the request path against the deployment and serves the
// resolved file, or a 404 when the resolution is not found. Methods,
// caching, and conditional requests are left to http.ServeContent and the
// layers above; this handler only maps paths onto resources.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Rooting before cleaning prevents parent directory traversal from ever
	// reaching the resolver in un-normalized form.
	r.URL.Path = path.Clean("/" + r.URL.Path)
	resolution := h.deployment.Resolve(r.URL.Path)
	if !resolution.Served {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	h.serveResolved(w, r, resolution.Path)
}

// serveResolved delivers the bytes of a successfully resolved file,
// rewriting the base element of HTML files on the way out.
func (h *Handler) serveResolved(w http.ResponseWriter, r *http.Request, resolved string) {
	var err error
	defer func() {
		if err != nil {
			WriteError(w, err)
		}
	}()
	f, err := h.fsys.Open(h.deployment.TreePath(resolved))
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return
	}
	contents, err := io.ReadAll(f)
	if err != nil {
		return
	}
	if strings.HasSuffix(resolved, ".html") {
		// Sanitize the base path so it cannot interfere with the "$1" and
		// "$2" back references of the rewriting expression.
		base := strings.ReplaceAll(h.basePath(r), "$", "")
		html := baseRe.ReplaceAllString(string(contents), "${1}"+base+"${2}")
		if h.rewriter != nil {
			html = h.rewriter(r, html)
		}
		http.ServeContent(w, r, path.Base(resolved), info.ModTime(), strings.NewReader(html))
		return
	}
	http.ServeContent(w, r, path.Base(resolved), info.ModTime(), bytes.NewReader(contents))
}

// clientReqPath returns the request path as the client originally issued it,
// before any path rewriting proxy got its hands on it, based on whatever
// forwarding information made it through. Without any, the (already
// sanitized) request path stands.
func clientReqPath(r *http.Request) string {
	if prefix := r.Header.Get(ForwardedPrefixHeader); prefix != "" {
		return path.Join(path.Clean("/"+prefix), r.URL.Path)
	}
	if fwuri := r.Header.Get(ForwardedURIHeader); fwuri != "" {
		if strings.HasPrefix(fwuri, "/") {
			// Some proxies forward only the path part.
			return path.Clean(fwuri)
		}
		if u, err := url.Parse(fwuri); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// basePath derives the base path the deployment is served under from the
// client's perspective, by comparing the request path we see against the
// path the client originally requested. When the two do not relate, the base
// is taken to be just "/".
func (h *Handler) basePath(r *http.Request) string {
	reqPath := r.URL.Path
	clientPath := clientReqPath(r)
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(clientPath, "/") {
		// A proxy redirecting /foo to /foo/ and then rewriting to /.
		clientPath += "/"
	}
	var base string
	if strings.HasSuffix(clientPath, reqPath) {
		base = clientPath[:len(clientPath)-len(reqPath)]
	}
	// The base must end in "/" or browsers dirname() away its final
	// element.
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
