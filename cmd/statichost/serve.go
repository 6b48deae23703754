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

package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/staticdeploy/statichost/serve"
)

// serveCmd represents the serve command.
var serveCmd = newServeCmd()
var listenFlag string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Serve a build output directory like the platform would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, deployment, err := loadDeployment(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("serving %s (root %q) on http://%s\n",
				args[0], deployment.Root(), listenFlag)
			return http.ListenAndServe(listenFlag, serve.New(fsys, deployment))
		},
	}
	cmd.Flags().StringVarP(&listenFlag, "listen", "l", "localhost:8080", "listen address")
	return cmd
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
