package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sagar7778/emailtemp/config"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/session"
	"github.com/sagar7778/emailtemp/server"
	"github.com/sagar7778/emailtemp/services"
)

func main() {
	app := &cli.App{
		Name:  "emailtemp",
		Usage: "ephemeral provider-backed mailboxes with a synchronized inbox view",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
			{
				Name:  "watch",
				Usage: "Provision a mailbox and tail its inbox from the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Usage: "preferred provider id"},
					&cli.StringFlag{Name: "local", Usage: "custom local part (random when omitted)"},
					&cli.StringFlag{Name: "domain", Usage: "mailbox domain (provider default when omitted)"},
				},
				Action: runWatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	return srv.Run()
}

func runWatch(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	svcs := services.InitServices(cfg, appLogger)

	provider, err := svcs.Registry.Resolve(c.String("provider"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	mailbox, err := provider.CreateMailbox(ctx, c.String("local"), c.String("domain"))
	if err != nil {
		return err
	}

	external := session.Materialize(mailbox)
	fmt.Printf("Watching %s (provider %s), Ctrl+C to stop\n", external.Address, external.Provider)

	sub := svcs.InboxEngine.Subscribe(external, 0)
	defer sub.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	seen := 0
	for {
		select {
		case <-stop:
			fmt.Println("\nDeleting mailbox...")
			if err := provider.DeleteMailbox(ctx, external); err != nil {
				appLogger.Warnf("mailbox delete failed: %v", err)
			}
			return nil
		case _, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			snapshot := sub.Snapshot()
			if snapshot.Err != "" {
				fmt.Printf("! %s\n", snapshot.Err)
				continue
			}
			for i := seen; i < len(snapshot.Messages); i++ {
				msg := snapshot.Messages[i]
				fmt.Printf("[%s] %s: %s\n", msg.Date, msg.From, msg.Subject)
			}
			if len(snapshot.Messages) > seen {
				seen = len(snapshot.Messages)
			}
		}
	}
}
