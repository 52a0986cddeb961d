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
	editContent  string
	editAccount  string
	editClipType string
	editHashtags cli.StringSlice

	editFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "content, c",
			Usage:       "replacement post body",
			Destination: &editContent,
		},
		cli.StringFlag{
			Name:        "account, a",
			Usage:       "replacement posting account",
			Destination: &editAccount,
		},
		cli.StringFlag{
			Name:        "clip-type, t",
			Usage:       "replacement clip type",
			Destination: &editClipType,
		},
		cli.StringSliceFlag{
			Name:  "hashtag",
			Usage: "replacement hashtag set (repeatable)",
			Value: &editHashtags,
		},
	}
)

func edit(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" || id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	params := &pcommon.UpdateParams{ItemId: id}
	if editContent != "" {
		params.PostContent = &editContent
	}
	meta := &postlib.MetadataEdit{}
	var touched bool
	if editAccount != "" {
		meta.AccountID = &editAccount
		touched = true
	}
	if editClipType != "" {
		meta.ClipType = &editClipType
		touched = true
	}
	if len(editHashtags) > 0 {
		tags := []string(editHashtags)
		meta.Hashtags = &tags
		touched = true
	}
	if touched {
		params.Metadata = meta
	}
	if params.PostContent == nil && params.Metadata == nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("nothing to edit"))
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "edit", "new_client", err)
		return nil
	}
	defer client.Close()
	if _, err := client.Update(params); err != nil {
		common.PrintRuntimeErr(ctx, "edit", "update_item", err)
		return nil
	}
	fmt.Printf("Updated %s.\n", id)
	return nil
}
