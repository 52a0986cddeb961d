package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/postline/postline/cmd/common"
	pcommon "github.com/postline/postline/common"
	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/daemon"
	"github.com/postline/postline/internal/server"
	"github.com/postline/postline/pkg/lateapi"
	"github.com/postline/postline/pkg/logger"
	"github.com/postline/postline/pkg/postlib"
)

var (
	daemonOutput    string
	daemonSchedule  string
	daemonLogFile   string
	daemonPort      int
	daemonRPCSecret string
	daemonListenAll bool

	daemonFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "queue root directory",
			Destination: &daemonOutput,
		},
		cli.StringFlag{
			Name:        "schedule, s",
			Usage:       "schedule file path (default: {output}/schedule.json)",
			Destination: &daemonSchedule,
		},
		cli.StringFlag{
			Name:        "log-file",
			Usage:       "append daemon logs to this file in addition to stderr",
			Destination: &daemonLogFile,
		},
		cli.IntFlag{
			Name:        "port",
			Usage:       "TCP fallback port; the JSON-RPC endpoint binds port+1",
			Value:       pcommon.DefaultTCPPort,
			Destination: &daemonPort,
		},
		cli.StringFlag{
			Name:        "rpc-secret",
			Usage:       "bearer token for the JSON-RPC endpoint; empty disables it",
			Destination: &daemonRPCSecret,
		},
		cli.BoolFlag{
			Name:        "rpc-listen-all",
			Usage:       "bind the JSON-RPC endpoint to all interfaces",
			Destination: &daemonListenAll,
		},
	}
)

func runDaemon(cliCtx *cli.Context) error {
	l := log.Default()
	var dlog logger.Logger = logger.NewStandardLogger(l)
	if daemonLogFile != "" {
		f, err := os.OpenFile(daemonLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			common.PrintRuntimeErr(cliCtx, "daemon", "open_log_file", err)
			return nil
		}
		defer f.Close()
		dlog = logger.NewMultiLogger(dlog,
			logger.NewStandardLogger(log.New(f, "", log.LstdFlags)))
	}
	defer dlog.Close()

	outputDir := resolveOutputDir(daemonOutput)
	schedulePath := daemonSchedule
	if schedulePath == "" {
		schedulePath = filepath.Join(outputDir, "schedule.json")
	}

	fs := afero.NewOsFs()
	store, err := postlib.NewStore(fs, outputDir)
	if err != nil {
		common.PrintRuntimeErr(cliCtx, "daemon", "open_store", err)
		return nil
	}
	schedules := postlib.NewScheduleStore(fs, schedulePath)
	// A malformed schedule file halts startup; a missing one synthesizes a
	// default template.
	if _, err := schedules.Load(); err != nil {
		common.PrintRuntimeErr(cliCtx, "daemon", "load_schedule", err)
		return nil
	}
	alloc := postlib.NewAllocator(schedules)

	token, err := resolveAPIToken()
	if err != nil {
		dlog.Warning("no posting API token, approvals will fail: %s", err.Error())
	}
	apiClient := lateapi.NewClient(token, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	queue := postlib.NewApprovalQueue(ctx, store, alloc, apiClient)

	var rpc *server.RPCServer
	if daemonRPCSecret != "" {
		rpc = server.NewRPCServer(&server.RPCConfig{
			Secret:    daemonRPCSecret,
			ListenAll: daemonListenAll,
			Version:   cliCtx.App.Version,
		}, store, alloc, queue, server.NewRPCNotifier(l))
	}
	serv := server.NewServer(l, rpc, daemonPort)

	s, err := api.NewApi(l, store, alloc, queue, cancel)
	if err != nil {
		common.PrintRuntimeErr(cliCtx, "daemon", "new_api", err)
		return nil
	}
	s.RegisterHandlers(serv)

	// The lifecycle runner bounds shutdown time and owns a liveness listener.
	runner := daemon.New(&daemon.Config{
		Port:            0,
		OutputDir:       outputDir,
		ShutdownTimeout: 10 * time.Second,
	}, &daemon.Dependencies{
		ShutdownFunc: serv.Shutdown,
		Logger:       dlog,
	})
	go func() { _ = runner.Start(ctx) }()

	dlog.Info("postline daemon listening")
	err = serv.Start(ctx)
	if runner.IsRunning() {
		_ = runner.Shutdown()
	}
	return err
}
