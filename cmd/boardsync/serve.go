package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "sync",
	Short:   "Run the webhook server",
	Long: `Listens for GitHub issues webhooks on POST /webhook and runs the matching
automation for each, one at a time. GET /health answers load balancer checks.

When a schema file is configured it is watched and reloaded on change; an
invalid edit is logged and the previous schema stays in effect.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			settings.Webhook.Addr = addr
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		if path := settings.SchemaPath; path != "" {
			go func() {
				err := schema.Watch(rootCtx, path, schema.DefaultDebounce,
					func(s *schema.Schema) {
						a.schema.Set(s)
						logger.Info("schema reloaded", "path", path)
					},
					func(err error) {
						logger.Error("schema reload failed, keeping previous schema", "path", path, "error", err)
					})
				if err != nil {
					logger.Error("schema watch stopped", "error", err)
				}
			}()
		}

		secret := settings.Webhook.Secret
		if secret == "" {
			logger.Warn("webhook.secret is not set; deliveries are not verified")
		}
		srv := webhook.NewServer(webhook.ServerConfig{
			Dispatcher: a.engine,
			Schema:     a.schema,
			Secret:     []byte(secret),
			QueueSize:  settings.Webhook.QueueSize,
			Logger:     logger,
		})
		return srv.ListenAndServe(rootCtx, settings.Webhook.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from webhook.addr)")
	rootCmd.AddCommand(serveCmd)
}
