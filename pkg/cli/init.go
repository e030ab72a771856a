/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vectorweight/vectorweight/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:                  "init",
		EnableShellCompletion: true,
		Usage:                 "Write a starter deployment specification",
		Description: `Write a starter deployment specification from a named template.

Available templates:
  minimal-dev           - single small cluster, internet mode
  full-production       - production multi-cluster layout with overrides
  airgapped-enterprise  - air-gapped source configuration

# Examples

List templates:
  vectorweight init --list

Write the production template:
  vectorweight init --template full-production --output vectorweight.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"p"},
				Value:   "minimal-dev",
				Usage:   "Template name",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List available template names and exit",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "vectorweight.yaml",
				Usage:   "Destination file path",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("list") {
				fmt.Println(strings.Join(config.TemplateNames(), "\n"))
				return nil
			}

			content, err := config.Template(cmd.String("template"))
			if err != nil {
				return err
			}

			dest := cmd.String("output")
			if _, statErr := os.Stat(dest); statErr == nil && !cmd.Bool("force") {
				return fmt.Errorf("%s already exists; use --force to overwrite", dest)
			}

			if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", dest, err)
			}

			slog.Info("specification written",
				"template", cmd.String("template"), "path", dest)
			return nil
		},
	}
}
