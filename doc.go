/*

Package statichost resolves request paths against a static deployment: an
immutable file tree, a single serving root, and an ordered list of rewrite
rules. Given a normalized request path, a Deployment deterministically
produces either the file to serve or a not-found result.

The serving root is fixed once, at deployment build time: an explicit
outputDirectory configuration value wins verbatim, otherwise a top-level
"public" directory is preferred, otherwise the tree's top level serves as-is.
Rewrite rules apply once per request, in declaration order and as a single
hop, before the file lookup; declaring the full wildcard "/(.*)" with
destination "/index.html" as the sole or last rule yields the classic
single-page application fallback.

Deployments are immutable after construction and safe for any number of
concurrent Resolve calls. Misconfiguration (a serving root that does not
exist, a rewrite pattern that does not compile) deliberately does not fail
deployment construction; it surfaces as not-found resolutions, mirroring how
static hosting platforms behave in production. Opt into WithStrictValidation
to reject such configurations at build time instead.

*/
package statichost
