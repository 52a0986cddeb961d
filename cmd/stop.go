package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	"github.com/postline/postline/pkg/postcli"
)

func stop(ctx *cli.Context) error {
	client, err := postcli.Connect()
	if err != nil {
		common.PrintRuntimeErr(ctx, "stop", "new_client", err)
		return nil
	}
	defer client.Close()
	if err := client.Stop(); err != nil {
		common.PrintRuntimeErr(ctx, "stop", "stop_daemon", err)
		return nil
	}
	fmt.Println("Daemon stopping.")
	return nil
}
