package cmd

import (
	"fmt"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	// Missing .env is fine; explicit env always wins over the file.
	_ = godotenv.Load()

	app := cli.App{
		Name:         "postline",
		HelpName:     "postline",
		Usage:        "A social-media post scheduler with a human review queue.",
		Version:      fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:    "postline <command> [arguments...]",
		Description:  DESCRIPTION,
		OnUsageError: common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the queue daemon in the foreground",
				Action: runDaemon,
				Flags:  daemonFlags,
			},
			{
				Name:                   "list",
				Aliases:                []string{"l"},
				Usage:                  "display the review queue",
				Action:                 list,
				OnUsageError:           common.UsageErrorCallback,
				Description:            ListDescription,
				UseShortOptionHandling: true,
				Flags:                  lsFlags,
			},
			{
				Name:                   "create",
				Aliases:                []string{"new"},
				Usage:                  "add an item to the review queue",
				Action:                 create,
				OnUsageError:           common.UsageErrorCallback,
				Description:            CreateDescription,
				UseShortOptionHandling: true,
				Flags:                  createFlags,
			},
			{
				Name:         "show",
				Usage:        "print one pending item in full",
				Action:       show,
				OnUsageError: common.UsageErrorCallback,
				Description:  ShowDescription,
			},
			{
				Name:                   "edit",
				Usage:                  "edit a pending item",
				Action:                 edit,
				OnUsageError:           common.UsageErrorCallback,
				Description:            EditDescription,
				UseShortOptionHandling: true,
				Flags:                  editFlags,
			},
			{
				Name:         "approve",
				Aliases:      []string{"a"},
				Usage:        "schedule pending items on the posting API",
				Action:       approve,
				OnUsageError: common.UsageErrorCallback,
				Description:  ApproveDescription,
			},
			{
				Name:         "reject",
				Usage:        "discard a pending item",
				Action:       reject,
				OnUsageError: common.UsageErrorCallback,
				Description:  RejectDescription,
			},
			{
				Name:                   "next",
				Usage:                  "preview free posting slots for a platform",
				Action:                 next,
				OnUsageError:           common.UsageErrorCallback,
				Description:            NextDescription,
				UseShortOptionHandling: true,
				Flags:                  nextFlags,
			},
			{
				Name:         "calendar",
				Usage:        "show the upcoming schedule with occupancy",
				Action:       calendar,
				OnUsageError: common.UsageErrorCallback,
				Description:  CalendarDescription,
				Flags:        calFlags,
			},
			{
				Name:         "auth",
				Usage:        "manage the posting API token",
				Description:  AuthDescription,
				OnUsageError: common.UsageErrorCallback,
				Subcommands: []cli.Command{
					{
						Name:   "login",
						Usage:  "store the API token",
						Action: authLogin,
						Flags:  authFlags,
					},
					{
						Name:   "status",
						Usage:  "report whether a token is stored",
						Action: authStatus,
					},
					{
						Name:   "logout",
						Usage:  "remove the stored token",
						Action: authLogout,
					},
				},
			},
			{
				Name:   "stop",
				Usage:  "stop a running daemon",
				Action: stop,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints the installed version of postline",
				Action:  common.GetVersion,
			},
		},
		Action:                 list,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
