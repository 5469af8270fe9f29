package client

import (
	"context"
	"fmt"
	"time"

	abci "github.com/tendermint/tendermint/abci/types"
	nm "github.com/tendermint/tendermint/node"
	rpctest "github.com/tendermint/tendermint/rpc/test"
)

// Runner is implemented by *testing.M.
type Runner interface {
	Run() int
}

// TestWithTendermint runs app in an in-process node configured by
// rpctest.GetConfig and runs the tests once the first block is produced.
// setup is called with the started node before that. It returns the exit
// code of the tests.
func TestWithTendermint(app abci.Application, setup func(*nm.Node), m Runner) int {
	node := rpctest.StartTendermint(app)
	defer func() {
		_ = node.Stop()
		node.Wait()
	}()
	setup(node)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	h, err := NewLocalClient(node).WaitForNextBlock(ctx)
	if err != nil {
		fmt.Printf("Failed to start tendermint: %s\n", err)
		return 1
	}
	fmt.Printf("Starting tests with block %d\n", h.Height)
	return m.Run()
}
