package main

import (
	"fmt"
	"os"

	"github.com/matrixforge/matrix-node/fixtures"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "matrix-node",
		Usage: "A GPU-accelerated matrix addition service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"MATRIX_NODE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			startCommand(),
			gpuInfoCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a starter config file",
		Action: func(c *cli.Context) error {
			path := c.String("config")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("refusing to overwrite existing config %q", path)
			}
			if err := os.WriteFile(path, fixtures.ConfigTemplate, 0644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}
