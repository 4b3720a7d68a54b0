/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/plainpress/server/config"
	"github.com/plainpress/server/internal/mq"
	"github.com/plainpress/server/types"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect article change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print article change events as they are published",
	Long: `Subscribes to the configured events channel and prints each article
event as one JSON line. Requires EVENTS_BACKEND=rabbitmq or pubsub.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := mq.Open(ctx, cfg)
		if errors.Is(err, mq.ErrDisabled) {
			return errors.New("no events backend configured (set EVENTS_BACKEND)")
		}
		if err != nil {
			return fmt.Errorf("connect events backend: %w", err)
		}
		defer events.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		err = mq.SubscribeArticleEvents(ctx, events, cfg.Events.Channel, func(_ context.Context, event types.ArticleEvent) error {
			return enc.Encode(event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
