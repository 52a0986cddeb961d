package common

import (
	"fmt"
	"testing"

	"github.com/urfave/cli"
)

func TestBeaut(t *testing.T) {
	for _, tc := range []struct {
		in   string
		n    int
		want string
	}{
		{"ab", 4, " ab "},
		{"ab", 5, " ab  "},
		{"abcd", 4, "abcd"},
	} {
		if got := Beaut(tc.in, tc.n); got != tc.want {
			t.Errorf("Beaut(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestUsageErrorCallbackCommandScope(t *testing.T) {
	var shownCommand string
	origCmd := showCommandHelp
	showCommandHelp = func(ctx *cli.Context, name string) error {
		shownCommand = name
		return nil
	}
	defer func() { showCommandHelp = origCmd }()

	app := cli.NewApp()
	app.HelpName = "postline"
	ctx := cli.NewContext(app, nil, nil)
	ctx.Command = cli.Command{Name: "approve"}

	if err := UsageErrorCallback(ctx, fmt.Errorf("bad flag"), false); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if shownCommand != "approve" {
		t.Fatalf("expected command help for approve, got %q", shownCommand)
	}
}
