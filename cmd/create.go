package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	pcommon "github.com/postline/postline/common"
	"github.com/postline/postline/pkg/postcli"
)

var (
	createPlatform string
	createAccount  string
	createVideo    string
	createClip     string
	createClipType string
	createContent  string
	createMedia    string
	createHashtags cli.StringSlice
	createLinks    cli.StringSlice

	createFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "platform, p",
			Usage:       "destination platform key (required)",
			Destination: &createPlatform,
		},
		cli.StringFlag{
			Name:        "content, c",
			Usage:       "post body (required)",
			Destination: &createContent,
		},
		cli.StringFlag{
			Name:        "media, m",
			Usage:       "path of a media file to attach",
			Destination: &createMedia,
		},
		cli.StringFlag{
			Name:        "account, a",
			Usage:       "posting account override",
			Destination: &createAccount,
		},
		cli.StringFlag{
			Name:        "source-video",
			Usage:       "identifier of the source video",
			Destination: &createVideo,
		},
		cli.StringFlag{
			Name:        "source-clip",
			Usage:       "identifier of the source clip",
			Destination: &createClip,
		},
		cli.StringFlag{
			Name:        "clip-type, t",
			Usage:       "clip type selecting a specific slot table",
			Destination: &createClipType,
		},
		cli.StringSliceFlag{
			Name:  "hashtag",
			Usage: "hashtag to attach (repeatable)",
			Value: &createHashtags,
		},
		cli.StringSliceFlag{
			Name:  "link",
			Usage: "link to embed (repeatable)",
			Value: &createLinks,
		},
	}
)

func create(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if createPlatform == "" || createContent == "" {
		return common.PrintErrWithCmdHelp(ctx,
			fmt.Errorf("create requires --platform and --content"))
	}
	client, err := postcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "create", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Create(&pcommon.CreateParams{
		Platform:    createPlatform,
		AccountId:   createAccount,
		SourceVideo: createVideo,
		SourceClip:  createClip,
		ClipType:    createClipType,
		Hashtags:    createHashtags,
		Links:       createLinks,
		PostContent: createContent,
		MediaPath:   createMedia,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "create", "create_item", err)
		return nil
	}
	fmt.Printf("Queued %s for %s, awaiting review.\n", res.Item.ID, res.Item.Platform)
	return nil
}
