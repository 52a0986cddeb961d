package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	pcommon "github.com/postline/postline/common"
	"github.com/postline/postline/pkg/postcli"
)

var (
	nextPlatform string
	nextClipType string
	nextCount    int

	nextFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "platform, p",
			Usage:       "platform to preview slots for (required)",
			Destination: &nextPlatform,
		},
		cli.StringFlag{
			Name:        "clip-type, t",
			Usage:       "clip type selecting a specific slot table",
			Destination: &nextClipType,
		},
		cli.IntFlag{
			Name:        "count, n",
			Usage:       "number of slots to preview",
			Value:       1,
			Destination: &nextCount,
		},
	}
)

func next(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if nextPlatform == "" {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("next requires --platform"))
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "next", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.NextSlot(&pcommon.NextSlotParams{
		Platform: nextPlatform,
		ClipType: nextClipType,
		Count:    nextCount,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "next", "next_slot", err)
		return nil
	}
	fmt.Printf("Next free slots for %s:\n", res.Platform)
	for _, slot := range res.Slots {
		fmt.Printf("  %s\n", slot.Format("Mon 2006-01-02 15:04 MST"))
	}
	return nil
}
