package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	pcommon "github.com/postline/postline/common"
	"github.com/postline/postline/pkg/credman"
)

var (
	authFromEnv bool

	authFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "from-env",
			Usage:       "read the token from " + pcommon.APITokenEnv + " instead of prompting",
			Destination: &authFromEnv,
		},
	}
)

func authLogin(ctx *cli.Context) error {
	var token string
	if authFromEnv {
		token = os.Getenv(pcommon.APITokenEnv)
		if token == "" {
			return common.PrintErrWithCmdHelp(ctx,
				fmt.Errorf("%s is not set", pcommon.APITokenEnv))
		}
	} else if arg := ctx.Args().First(); arg != "" {
		token = arg
	} else {
		fmt.Print("Posting API token: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			common.PrintRuntimeErr(ctx, "auth", "read_token", err)
			return nil
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("empty token"))
	}
	tm, err := openTokenManager()
	if err != nil {
		common.PrintRuntimeErr(ctx, "auth", "open_credentials", err)
		return nil
	}
	if err := tm.SetToken(credman.TokenName, token); err != nil {
		common.PrintRuntimeErr(ctx, "auth", "store_token", err)
		return nil
	}
	fmt.Println("Token stored.")
	return nil
}

func authStatus(ctx *cli.Context) error {
	if os.Getenv(pcommon.APITokenEnv) != "" {
		fmt.Printf("Using token from %s.\n", pcommon.APITokenEnv)
		return nil
	}
	tm, err := openTokenManager()
	if err != nil {
		common.PrintRuntimeErr(ctx, "auth", "open_credentials", err)
		return nil
	}
	if tm.HasToken(credman.TokenName) {
		fmt.Println("A token is stored.")
	} else {
		fmt.Println("No token stored. Run 'postline auth login'.")
	}
	return nil
}

func authLogout(ctx *cli.Context) error {
	tm, err := openTokenManager()
	if err != nil {
		common.PrintRuntimeErr(ctx, "auth", "open_credentials", err)
		return nil
	}
	if err := tm.DeleteToken(credman.TokenName); err != nil {
		common.PrintRuntimeErr(ctx, "auth", "delete_token", err)
		return nil
	}
	fmt.Println("Token removed.")
	return nil
}
