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
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command.
var resolveCmd = newResolveCmd()

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <dir> <path>...",
		Short: "Resolve request paths against a deployment",
		Long: `Resolve answers, for each given request path, which file of the deployment
it would serve, applying the configured rewrites exactly like the serving
path does. A "not found" result is a regular answer, not an error.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deployment, err := loadDeployment(args[0])
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Request", "Result", "File"})
			table.SetBorder(false)
			table.SetColumnAlignment([]int{
				tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
			})
			for _, reqPath := range args[1:] {
				resolution := deployment.Resolve(reqPath)
				if !resolution.Served {
					table.Append([]string{reqPath, "not found", ""})
					continue
				}
				table.Append([]string{reqPath, "served", deployment.TreePath(resolution.Path)})
			}
			table.Render()
			return nil
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
