package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Execute a statement and print its rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.engine.Query(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.formatter.Format(cmd.OutOrStdout(), res)
		},
	}
}

func newExplainCmd(a *app) *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "explain <sql>",
		Short: "Print the operator tree of a statement as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt, err := a.engine.Prepare(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if text {
				plan, err := stmt.Explain()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), plan.String())
				return nil
			}
			data, err := stmt.ExplainJSON()
			if err != nil {
				return err
			}
			return writeIndented(cmd, data)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print an indented text tree instead of JSON")
	return cmd
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <sql>",
		Short: "Print statement metadata as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt, err := a.engine.Prepare(strings.Join(args, " "))
			if err != nil {
				return err
			}
			data, err := stmt.MetadataJSON()
			if err != nil {
				return err
			}
			return writeIndented(cmd, data)
		},
	}
}

func writeIndented(cmd *cobra.Command, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
