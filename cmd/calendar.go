package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	"github.com/postline/postline/pkg/postcli"
)

var (
	calDays int

	calFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "days, d",
			Usage:       "number of days to project",
			Value:       7,
			Destination: &calDays,
		},
	}
)

func calendar(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "calendar", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Calendar(calDays)
	if err != nil {
		common.PrintRuntimeErr(ctx, "calendar", "get_calendar", err)
		return nil
	}
	if len(res.Entries) == 0 {
		fmt.Println("postline: no upcoming slots")
		return nil
	}
	var day string
	for _, e := range res.Entries {
		d := e.At.Format("Mon 2006-01-02")
		if d != day {
			day = d
			fmt.Printf("%s\n", day)
		}
		state := "free"
		if e.Booked {
			state = "booked"
		}
		label := ""
		if e.Label != "" {
			label = "  (" + e.Label + ")"
		}
		fmt.Printf("  %s  %-10s  %s%s\n", e.At.Format("15:04"), e.Platform, state, label)
	}
	return nil
}
