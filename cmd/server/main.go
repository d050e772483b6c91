package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"simplix/internal/app/runtime"
	"simplix/internal/domain"
	"simplix/internal/usecase/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// command failures were already reported on the console
		if !isCommandError(err) {
			log.Printf("simplix: %v", err)
		}
		os.Exit(1)
	}
}

func isCommandError(err error) bool {
	var cmdErr *commands.Error
	return errors.As(err, &cmdErr)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "simplix",
		Short:         "Command dispatch server for the simplix world",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newExecCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket server and the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <line...>",
		Short: "Run one command line as the console and exit",
		Args:  cobra.MinimumNArgs(1),
		// flags belong to the command line, not to exec
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			run, err := runtime.Start(ctx, runtime.Options{ConsoleOut: cmd.OutOrStdout(), Headless: true})
			if err != nil {
				return err
			}
			outcome, execErr := run.Exec(ctx, strings.Join(args, " "))
			if outcome != "" && outcome != domain.OutcomeDone {
				log.Printf("simplix: exec finished with %s", outcome)
			}
			if err := run.Stop(); err != nil {
				log.Printf("simplix: stop: %v", err)
			}
			return execErr
		},
	}
}

func serve(ctx context.Context) error {
	run, err := runtime.Start(ctx, runtime.Options{ConsoleIn: os.Stdin, ConsoleOut: os.Stdout})
	if err != nil {
		return err
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- run.Wait() }()

	select {
	case <-ctx.Done():
		log.Println("simplix: shutting down")
	case err = <-waitErr:
	}
	if stopErr := run.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}
