package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/matrixforge/matrix-node/pkg/nodeclient"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// send_matrices is a smoke-test tool for a running node. It uploads two
// freshly generated matrices to /add, or queries /gpu-info.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the node")
	rows := flag.Int("rows", 100, "matrix rows")
	cols := flag.Int("cols", 100, "matrix columns")
	flag.Parse()

	command := "add"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	client := nodeclient.New(*addr, nil)

	switch strings.ToLower(command) {
	case "add":
		matrix1, err := serialize(constantMatrix(*rows, *cols, 1))
		if err != nil {
			fmt.Printf("Error encoding matrix: %s\n", err)
			os.Exit(1)
		}
		matrix2, err := serialize(constantMatrix(*rows, *cols, 2))
		if err != nil {
			fmt.Printf("Error encoding matrix: %s\n", err)
			os.Exit(1)
		}

		result, err := client.Add(context.Background(), matrix1, matrix2)
		if err != nil {
			fmt.Printf("Error sending request: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("Shape:   %dx%d\n", result.MatrixShape[0], result.MatrixShape[1])
		fmt.Printf("Device:  %s\n", result.Device)
		fmt.Printf("Elapsed: %.6fs\n", result.ElapsedTime)
	case "gpu-info":
		devices, err := client.GPUInfo(context.Background())
		if err != nil {
			fmt.Printf("Error sending request: %s\n", err)
			os.Exit(1)
		}
		if len(devices) == 0 {
			fmt.Println("No GPUs detected.")
			return
		}
		for _, d := range devices {
			fmt.Printf("GPU %s: %d / %d MB\n", d.GPU, d.MemoryUsedMB, d.MemoryTotalMB)
		}
	default:
		fmt.Printf("Invalid command: %s. Must be 'add' or 'gpu-info'.\n", command)
		os.Exit(1)
	}
}

func constantMatrix(rows, cols int, fill float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = fill
	}
	return mat.NewDense(rows, cols, data)
}

func serialize(m *mat.Dense) ([]byte, error) {
	var buf bytes.Buffer
	if err := npyio.Write(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
