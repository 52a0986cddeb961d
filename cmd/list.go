package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	pcommon "github.com/postline/postline/common"
	"github.com/postline/postline/pkg/postcli"
	"github.com/postline/postline/pkg/postlib"
)

var (
	showPublished bool
	showGrouped   bool

	lsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "published, p",
			Usage:       "list published items instead of pending ones",
			Destination: &showPublished,
		},
		cli.BoolFlag{
			Name:        "grouped, g",
			Usage:       "cluster pending items by source clip",
			Destination: &showGrouped,
		},
	}
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()
	l, err := client.List(&pcommon.ListParams{
		Grouped:       showGrouped,
		ShowPublished: showPublished,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "get_list", err)
		return nil
	}
	if showGrouped {
		printGroups(l.Groups)
		return nil
	}
	printItems(l.Items)
	return nil
}

func printGroups(groups []*postlib.ItemGroup) {
	if len(groups) == 0 {
		fmt.Println("postline: queue is empty")
		return
	}
	for _, g := range groups {
		label := g.SourceClip
		if label == "" {
			label = "(ungrouped)"
		}
		fmt.Printf("%s\n", label)
		for _, item := range g.Items {
			fmt.Printf("  %s  %-10s  %s\n", item.ID, item.Platform, excerpt(item.PostContent, 40))
		}
	}
}

func printItems(items []*postlib.QueueItem) {
	if len(items) == 0 {
		fmt.Println("postline: queue is empty")
		return
	}
	txt := "Here is your queue:"
	txt += "\n\n--------------------------------------------------------------------"
	txt += "\n|Num|      Item Id      |  Platform  |           Content            |"
	txt += "\n|---|-------------------|------------|------------------------------|"
	for i, item := range items {
		id := item.ID
		if len(id) > 17 {
			id = id[:14] + "..."
		}
		txt += fmt.Sprintf("\n| %d |%s|%s|%s|",
			i+1,
			common.Beaut(id, 19),
			common.Beaut(item.Platform, 12),
			common.Beaut(excerpt(item.PostContent, 28), 30),
		)
	}
	txt += "\n--------------------------------------------------------------------"
	fmt.Println(txt)
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
