package device

import (
	"runtime"
	"sync"
)

// TileDim is the block edge for kernel launches. Work is always dispatched
// in TileDim x TileDim tiles; threads that land outside the matrix return
// without writing.
const TileDim = 16

// Dim3 mirrors CUDA's dim3 structure for launch geometry.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of positions the dimensions span.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies a task's position within the launch hierarchy,
// following CUDA's blockIdx/threadIdx/blockDim/gridDim convention.
type ThreadID struct {
	BlockIdx  Dim3
	ThreadIdx Dim3
	BlockDim  Dim3
	GridDim   Dim3
}

// GlobalX returns the global column index of the task.
func (tid ThreadID) GlobalX() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalY returns the global row index of the task.
func (tid ThreadID) GlobalY() int {
	return tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
}

// kernelFunc executes one task of a launch.
type kernelFunc func(tid ThreadID)

// ceilDiv rounds the quotient up so partial tiles still get a full block.
func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// gridFor returns the launch geometry covering a rows x cols domain with
// TileDim x TileDim blocks.
func gridFor(rows, cols int) (grid, block Dim3) {
	grid = Dim3{X: ceilDiv(cols, TileDim), Y: ceilDiv(rows, TileDim), Z: 1}
	block = Dim3{X: TileDim, Y: TileDim, Z: 1}
	return grid, block
}

// launch executes fn for every thread of every block and returns once all
// blocks have finished. Blocks are spread across a worker pool sized by the
// host CPU count; threads within a block run sequentially on one worker.
func launch(grid, block Dim3, fn kernelFunc) {
	gridSize := grid.Size()
	blockSize := block.Size()
	if gridSize == 0 || blockSize == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	blocksPerWorker := ceilDiv(gridSize, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for workerID := 0; workerID < numWorkers; workerID++ {
		startBlock := workerID * blocksPerWorker
		endBlock := startBlock + blocksPerWorker
		if endBlock > gridSize {
			endBlock = gridSize
		}

		go func(start, end int) {
			defer wg.Done()
			for blockID := start; blockID < end; blockID++ {
				blockIdx := linearTo3D(blockID, grid)
				for threadID := 0; threadID < blockSize; threadID++ {
					fn(ThreadID{
						BlockIdx:  blockIdx,
						ThreadIdx: linearTo3D(threadID, block),
						BlockDim:  block,
						GridDim:   grid,
					})
				}
			}
		}(startBlock, endBlock)
	}
	wg.Wait()
}

// linearTo3D converts a linear index to 3D coordinates within dim.
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
