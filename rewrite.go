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
	"regexp"

	"github.com/staticdeploy/statichost/deployconfig"
)

// rule is a compiled rewrite rule. The source pattern is anchored so it must
// cover the whole slash-rooted request path; "/(.*)" thus matches every
// request including "/" itself.
type rule struct {
	pattern     *regexp.Regexp
	destination string
}

// compileRule compiles a configured rewrite into a matchable rule.
func compileRule(rw deployconfig.Rewrite) (rule, error) {
	pattern, err := regexp.Compile("^" + rw.Source + "$")
	if err != nil {
		return rule{}, fmt.Errorf("rewrite source %q: %w", rw.Source, err)
	}
	return rule{pattern: pattern, destination: rw.Destination}, nil
}

// compileRules compiles the configured rewrite list, preserving its order.
// In the default lax mode a rewrite whose source does not compile becomes
// inert: it is left out, so it simply never matches, and resolution carries
// on with the remaining rules. In strict mode the first broken rewrite
// aborts compilation with its error.
func compileRules(rewrites []deployconfig.Rewrite, strict bool) ([]rule, error) {
	rules := make([]rule, 0, len(rewrites))
	for _, rw := range rewrites {
		r, err := compileRule(rw)
		if err != nil {
			if strict {
				return nil, err
			}
			continue
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// apply runs the rooted request path through the rule list in declaration
// order. The first matching rule's destination, with any captured groups
// substituted, becomes the effective lookup path; ok reports whether any
// rule matched at all. Rewriting is a single hop: the returned destination
// is never fed back through the rule list.
func apply(rules []rule, rootedPath string) (destination string, ok bool) {
	for _, r := range rules {
		if !r.pattern.MatchString(rootedPath) {
			continue
		}
		return r.pattern.ReplaceAllString(rootedPath, r.destination), true
	}
	return "", false
}
