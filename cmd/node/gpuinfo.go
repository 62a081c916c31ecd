package main

import (
	"fmt"

	"github.com/matrixforge/matrix-node/internal/nvml"
	"github.com/urfave/cli/v2"
)

func gpuInfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "gpu-info",
		Usage: "Print the memory usage of every visible GPU",
		Action: func(c *cli.Context) error {
			provider := nvml.NewProvider()
			if err := provider.Init(); err != nil {
				return err
			}
			defer func() { _ = provider.Shutdown() }()

			devices, err := provider.DeviceMemory()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No GPUs detected.")
				return nil
			}
			for _, d := range devices {
				fmt.Printf("   GPU %d: %s\n", d.Index, d.Name)
				fmt.Printf("     Memory: %d / %d MB\n", d.UsedMB, d.TotalMB)
			}
			return nil
		},
	}
}
