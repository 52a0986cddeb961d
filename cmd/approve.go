package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	"github.com/postline/postline/pkg/postcli"
)

func approve(ctx *cli.Context) error {
	ids := ctx.Args()
	if len(ids) == 0 || ids.First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "approve", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Approve(ids...)
	if err != nil {
		common.PrintRuntimeErr(ctx, "approve", "approve_items", err)
		return nil
	}
	result := res.Result
	for _, r := range result.Results {
		if r.Success {
			when := "?"
			if r.ScheduledFor != nil {
				when = r.ScheduledFor.Format("Mon 2006-01-02 15:04")
			}
			fmt.Printf("✓ %s scheduled for %s\n", r.ItemID, when)
			continue
		}
		fmt.Printf("✗ %s failed: %s\n", r.ItemID, r.Error)
	}
	fmt.Printf("\n%d scheduled, %d failed.\n", result.Scheduled, result.Failed)
	if len(result.RateLimitedPlatforms) > 0 {
		fmt.Printf("Rate limited platforms: %s\n", strings.Join(result.RateLimitedPlatforms, ", "))
	}
	return nil
}
