package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/postline/postline/common"
	"github.com/postline/postline/pkg/credman"
	"github.com/postline/postline/pkg/credman/keyring"
)

const DESCRIPTION = `
Postline schedules social-media posts from a human-reviewed queue.
Items wait under a pending directory until you approve them; approval
assigns each one the next free slot from your weekly schedule and
books it on the remote posting API.
`

const (
	ListDescription = `The list command displays the review queue. By default it
shows pending items; use --published for committed ones or
--grouped to cluster variants cut from the same clip.

Example:
        postline list

`
	CreateDescription = `The create command adds a new item to the review queue.
The item stays in pending until approved or rejected.

Example:
        postline create -p youtube -c "launch day!" -m ./teaser.mp4

`
	ShowDescription = `The show command prints one pending item in full, including
its post body and metadata.

Example:
        postline show 4f7c9b

`
	EditDescription = `The edit command updates a pending item's post content or
metadata fields in place.

Example:
        postline edit 4f7c9b -c "revised copy"

`
	ApproveDescription = `The approve command schedules pending items: each one gets
the next free slot for its platform and is committed to the
remote posting API. Per-item failures are reported without
aborting the batch.

Example:
        postline approve 4f7c9b 91d2aa

`
	RejectDescription = `The reject command discards a pending item. Rejected items
are removed permanently; there is no archive.

Example:
        postline reject 4f7c9b

`
	NextDescription = `The next command previews the upcoming free posting slots
for a platform without booking anything.

Example:
        postline next -p tiktok -n 3

`
	CalendarDescription = `The calendar command projects the upcoming schedule across
all platforms, marking slots already taken.

Example:
        postline calendar --days 14

`
	AuthDescription = `The auth command manages the posting API token. The token is
stored encrypted; the key lives in the OS keyring with a file
fallback for headless hosts.

Example:
        postline auth login

`
)

// configDir returns the postline configuration directory, creating it if
// needed.
func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	dir := filepath.Join(base, "postline")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// openTokenManager opens the encrypted credentials file, preferring the
// system keyring for the key and falling back to a key file.
func openTokenManager() (*credman.TokenManager, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	key, err := credman.ResolveKey(keyring.NewKeyring())
	if err != nil {
		key, err = credman.ResolveKey(keyring.NewFileKeyStore(dir))
		if err != nil {
			return nil, fmt.Errorf("resolve encryption key: %w", err)
		}
	}
	return credman.NewTokenManager(filepath.Join(dir, "credentials.bin"), key)
}

// resolveAPIToken returns the posting API token: the environment variable
// wins, then the stored credential.
func resolveAPIToken() (string, error) {
	if token := os.Getenv(common.APITokenEnv); token != "" {
		return token, nil
	}
	tm, err := openTokenManager()
	if err != nil {
		return "", err
	}
	token, err := tm.GetToken(credman.TokenName)
	if err != nil {
		return "", fmt.Errorf("no API token: set %s or run 'postline auth login'", common.APITokenEnv)
	}
	return token, nil
}

// resolveOutputDir returns the queue root: flag value, then environment,
// then "output" in the working directory.
func resolveOutputDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir := os.Getenv(common.OutputDirEnv); dir != "" {
		return dir
	}
	return "output"
}
