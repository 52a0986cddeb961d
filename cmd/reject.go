package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	"github.com/postline/postline/pkg/postcli"
)

func reject(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" || id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "reject", "new_client", err)
		return nil
	}
	defer client.Close()
	if _, err := client.Reject(id); err != nil {
		common.PrintRuntimeErr(ctx, "reject", "reject_item", err)
		return nil
	}
	fmt.Printf("Rejected %s.\n", id)
	return nil
}
