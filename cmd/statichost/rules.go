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
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// rulesCmd represents the rules command.
var rulesCmd = newRulesCmd()

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules <dir>",
		Short: "Show the effective serving root and rewrite rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deployment, err := loadDeployment(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("serving root: %q (%d files)\n",
				deployment.Root(), deployment.Tree().Len())
			rewrites := deployment.Rewrites()
			if len(rewrites) == 0 {
				cmd.Println("no rewrites configured")
				return nil
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"#", "Source", "Destination"})
			table.SetBorder(false)
			for i, rw := range rewrites {
				table.Append([]string{strconv.Itoa(i + 1), rw.Source, rw.Destination})
			}
			table.Render()
			return nil
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
