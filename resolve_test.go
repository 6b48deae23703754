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
	"sync"

	"github.com/staticdeploy/statichost/deployconfig"
	"github.com/staticdeploy/statichost/filetree"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

func strptr(s string) *string { return &s }

// deploy builds a Deployment in default (lax) mode, failing the test on the
// impossible construction error.
func deploy(tree *filetree.Tree, cfg *deployconfig.Config) *Deployment {
	GinkgoHelper()
	return Successful(NewDeployment(tree, cfg))
}

var _ = Describe("resolving request paths", func() {

	spaFallback := &deployconfig.Config{
		Rewrites: []deployconfig.Rewrite{
			{Source: "/(.*)", Destination: "/index.html"},
		},
	}

	Context("without any rewrite rules", func() {

		It("serves a directly matching file and nothing else", func() {
			d := deploy(filetree.New("index.html"), nil)
			Expect(d.Resolve("/index.html")).To(Equal(Result{Path: "index.html", Served: true}))
			Expect(d.Resolve("/about")).To(Equal(Result{}))
		})

		It("falls back to the directory index for directory paths", func() {
			d := deploy(filetree.New("index.html", "docs/index.html", "docs/a.html"), nil)
			Expect(d.Resolve("/")).To(Equal(Result{Path: "index.html", Served: true}))
			Expect(d.Resolve("/docs")).To(Equal(Result{Path: "docs/index.html", Served: true}))
			Expect(d.Resolve("/docs/")).To(Equal(Result{Path: "docs/index.html", Served: true}))
		})

		It("treats paths case-sensitively, as the storage does", func() {
			d := deploy(filetree.New("index.html"), nil)
			Expect(d.Resolve("/Index.html").Served).To(BeFalse())
			Expect(d.Resolve("/INDEX.HTML").Served).To(BeFalse())
		})

	})

	Context("with the full-wildcard SPA fallback rule", func() {

		DescribeTable("rewrites every request to the entry file",
			func(requestPath string) {
				d := deploy(filetree.New("index.html"), spaFallback)
				Expect(d.Resolve(requestPath)).To(Equal(Result{Path: "index.html", Served: true}))
			},
			Entry("the root", "/"),
			Entry("a client-side route", "/about"),
			Entry("a deeply nested client-side route", "/deeply/nested/path"),
		)

		It("still resolves to not found when even the entry file is missing", func() {
			d := deploy(filetree.New("other.html"), spaFallback)
			Expect(d.Resolve("/about").Served).To(BeFalse())
		})

	})

	Context("rewrite rule evaluation", func() {

		It("lets the first matching rule win, in declaration order", func() {
			d := deploy(filetree.New("about.html", "index.html"), &deployconfig.Config{
				Rewrites: []deployconfig.Rewrite{
					{Source: "/about", Destination: "/about.html"},
					{Source: "/(.*)", Destination: "/index.html"},
				},
			})
			Expect(d.Resolve("/about")).To(Equal(Result{Path: "about.html", Served: true}))
			Expect(d.Resolve("/anything-else")).To(Equal(Result{Path: "index.html", Served: true}))
		})

		It("substitutes captured groups into the destination", func() {
			d := deploy(filetree.New("news/launch.html"), &deployconfig.Config{
				Rewrites: []deployconfig.Rewrite{
					{Source: "/old-blog/(.*)", Destination: "/news/$1"},
				},
			})
			Expect(d.Resolve("/old-blog/launch.html")).
				To(Equal(Result{Path: "news/launch.html", Served: true}))
		})

		It("rewrites in a single hop, never chaining through the rule list", func() {
			d := deploy(filetree.New("a.html"), &deployconfig.Config{
				Rewrites: []deployconfig.Rewrite{
					{Source: "/start", Destination: "/hop"},
					{Source: "/hop", Destination: "/a.html"},
				},
			})
			Expect(d.Resolve("/hop")).To(Equal(Result{Path: "a.html", Served: true}))
			// /start rewrites to /hop, which is no file; the second rule
			// never gets to see the rewritten path.
			Expect(d.Resolve("/start").Served).To(BeFalse())
		})

		It("matches sources only against the whole request path", func() {
			d := deploy(filetree.New("index.html", "about/index.html"), &deployconfig.Config{
				Rewrites: []deployconfig.Rewrite{
					{Source: "/about", Destination: "/index.html"},
				},
			})
			// No anchored match for the longer path, so it resolves directly.
			Expect(d.Resolve("/about/index.html")).
				To(Equal(Result{Path: "about/index.html", Served: true}))
		})

		It("skips a rewrite whose source does not compile", func() {
			d := deploy(filetree.New("index.html"), &deployconfig.Config{
				Rewrites: []deployconfig.Rewrite{
					{Source: "/(", Destination: "/broken.html"},
					{Source: "/(.*)", Destination: "/index.html"},
				},
			})
			Expect(d.Resolve("/about")).To(Equal(Result{Path: "index.html", Served: true}))
		})

	})

	Context("serving root selection and scoping", func() {

		tree := filetree.New("public/index.html", "index.html")

		It("prefers a conventional public directory over the top level", func() {
			d := deploy(tree, nil)
			Expect(d.Root()).To(Equal("public"))
			Expect(d.Resolve("/")).To(Equal(Result{Path: "index.html", Served: true}))
			Expect(d.TreePath("index.html")).To(Equal("public/index.html"))
		})

		It("honors an explicit top-level override even though public exists", func() {
			d := deploy(tree, &deployconfig.Config{OutputDirectory: strptr(".")})
			Expect(d.Root()).To(Equal("."))
			Expect(d.Resolve("/")).To(Equal(Result{Path: "index.html", Served: true}))
			Expect(d.TreePath("index.html")).To(Equal("index.html"))
			// The public subtree stays reachable below the top level.
			Expect(d.Resolve("/public/index.html").Served).To(BeTrue())
		})

		It("resolves everything to not found below a missing explicit root", func() {
			d := deploy(tree, &deployconfig.Config{OutputDirectory: strptr("dist")})
			Expect(d.Root()).To(Equal("dist"))
			Expect(d.Resolve("/").Served).To(BeFalse())
			Expect(d.Resolve("/index.html").Served).To(BeFalse())
			Expect(d.Resolve("/public/index.html").Served).To(BeFalse())
		})

		It("makes files outside the serving root unreachable", func() {
			d := deploy(tree, nil)
			Expect(d.Resolve("/public/index.html").Served).To(BeFalse())
			Expect(d.Resolve("/../index.html")).To(Equal(Result{Path: "index.html", Served: true}),
				"parent traversal must clamp at the serving root")
		})

	})

	Context("strict validation mode", func() {

		It("rejects an explicit output directory missing from the tree", func() {
			_, err := NewDeployment(filetree.New("index.html"),
				&deployconfig.Config{OutputDirectory: strptr("dist")},
				WithStrictValidation())
			Expect(err).To(MatchError(ContainSubstring(`"dist" does not exist`)))
		})

		It("rejects a rewrite source that does not compile", func() {
			_, err := NewDeployment(filetree.New("index.html"),
				&deployconfig.Config{
					Rewrites: []deployconfig.Rewrite{{Source: "/(", Destination: "/x"}},
				},
				WithStrictValidation())
			Expect(err).To(MatchError(ContainSubstring(`rewrite source "/("`)))
		})

		It("rejects structurally incomplete rewrites", func() {
			_, err := NewDeployment(filetree.New("index.html"),
				&deployconfig.Config{
					Rewrites: []deployconfig.Rewrite{{Source: "/(.*)"}},
				},
				WithStrictValidation())
			Expect(err).To(HaveOccurred())
		})

		It("accepts a well-formed configuration", func() {
			Expect(NewDeployment(filetree.New("public/index.html"),
				&deployconfig.Config{
					OutputDirectory: strptr("public"),
					Rewrites: []deployconfig.Rewrite{
						{Source: "/(.*)", Destination: "/index.html"},
					},
				},
				WithStrictValidation())).Error().NotTo(HaveOccurred())
		})

	})

	It("resolves deterministically, also under concurrent use", func() {
		d := deploy(filetree.New("index.html", "about.html"), spaFallback)
		want := d.Resolve("/some/route")
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				for j := 0; j < 100; j++ {
					Expect(d.Resolve("/some/route")).To(Equal(want))
				}
			}()
		}
		wg.Wait()
	})

})
