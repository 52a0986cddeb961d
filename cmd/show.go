package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	"github.com/postline/postline/pkg/postcli"
)

func show(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" || id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "show", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Get(id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "show", "get_item", err)
		return nil
	}
	item := res.Item
	fmt.Printf("Id:        %s\n", item.ID)
	fmt.Printf("Platform:  %s\n", item.Platform)
	fmt.Printf("Status:    %s\n", item.Status)
	if item.ClipType != "" {
		fmt.Printf("Clip type: %s\n", item.ClipType)
	}
	if item.AccountID != "" {
		fmt.Printf("Account:   %s\n", item.AccountID)
	}
	if len(item.Hashtags) > 0 {
		fmt.Printf("Hashtags:  %s\n", strings.Join(item.Hashtags, " "))
	}
	if len(item.Links) > 0 {
		fmt.Printf("Links:     %s\n", strings.Join(item.Links, " "))
	}
	if item.HasMedia {
		fmt.Printf("Media:     %s\n", item.MediaPath)
	}
	if item.SuggestedSlot != nil {
		fmt.Printf("Suggested: %s\n", item.SuggestedSlot.Format("Mon 2006-01-02 15:04"))
	}
	fmt.Printf("Created:   %s\n", item.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("\n%s\n", item.PostContent)
	return nil
}
