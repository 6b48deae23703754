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

// The statichost command deploys a build output directory locally: it
// inspects, resolves against, and serves a deployment exactly the way the
// resolver library does in production.
package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/staticdeploy/statichost"
	"github.com/staticdeploy/statichost/deployconfig"
	"github.com/staticdeploy/statichost/filetree"
)

// ConfigFile is the deployment configuration file looked up inside the build
// output directory when no --config was given.
const ConfigFile = "statichost.yaml"

var configFlag string
var strictFlag bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statichost",
		Short: "Resolve and serve static deployments",
		Long: `Statichost treats a directory as the finalized file tree of a static
deployment and answers the same question the hosting platform answers per
request: which file, if any, does a request path serve?

The serving root and the rewrite rules come from the deployment
configuration; without one, platform defaults apply (a top-level "public"
directory, otherwise the directory itself).`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"deployment configuration file (default <dir>/"+ConfigFile+")")
	cmd.PersistentFlags().BoolVar(&strictFlag, "strict", false,
		"reject misconfiguration instead of serving blanket 404s")
	return cmd
}

// loadDeployment fixes a deployment from the given build output directory
// and its configuration, honoring the global --config and --strict flags.
func loadDeployment(dir string) (fs.FS, *statichost.Deployment, error) {
	fsys := os.DirFS(dir)
	tree, err := filetree.FromFS(fsys)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, nil, err
	}
	var opts []statichost.Option
	if strictFlag {
		opts = append(opts, statichost.WithStrictValidation())
	}
	deployment, err := statichost.NewDeployment(tree, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return fsys, deployment, nil
}

// loadConfig reads the configuration named by --config, or the conventional
// configuration file inside the deployment directory. Having none at all is
// fine and yields the all-defaults configuration.
func loadConfig(dir string) (*deployconfig.Config, error) {
	if configFlag != "" {
		return deployconfig.LoadFile(configFlag)
	}
	cfg, err := deployconfig.LoadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}

// Execute runs the root command and exits non-zero on error; cobra has
// already reported the error by then.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
