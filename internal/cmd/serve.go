package cmd

import (
	"github.com/spf13/cobra"

	"github.com/talentloop/portal/internal/api"
	"github.com/talentloop/portal/internal/api/handler"
	"github.com/talentloop/portal/internal/api/middleware"
	"github.com/talentloop/portal/internal/infrastructure/queue"
	"github.com/talentloop/portal/internal/infrastructure/session"
	"github.com/talentloop/portal/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP service",
	Long: `Run the session service browsers talk to. Each browser gets a visitor
cookie; its session lives in the backend chosen by SESSION_DRIVER
(memory, file, redis or mongo).

Examples:
  # In-memory sessions against a local stub backend
  portal serve

  # Redis-backed sessions
  SESSION_DRIVER=redis REDIS_ADDR=localhost:6379 portal serve
`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Component("serve")

	st, err := openStores(ctx, appConfig.Session.Driver)
	if err != nil {
		return err
	}
	defer st.close()

	kv, err := session.NewKV(session.Config{Driver: appConfig.Session.Driver, FilePath: appConfig.Session.File}, st.deps())
	if err != nil {
		return err
	}

	client := newRemoteClient()
	mail := queue.NewDispatcher(appConfig.Mail.Workers, client, logger.Component("mail"))
	mail.Start(ctx)

	probes := st.probes()
	if p, ok := kv.(handler.Pinger); ok {
		probes["session_store"] = p
	}

	e := api.NewRouter(api.Dependencies{
		Gateways: api.NewGatewayFactory(client, kv, appConfig.Session.TTL, logger.Component("gateway")),
		Mail:     mail,
		Welcome:  queue.WelcomeMail,
		Probes:   probes,
		Visitor: middleware.VisitorOptions{
			CookieName: appConfig.Session.Cookie,
			Secure:     !appConfig.IsDevelopment(),
		},
		Log: log,
	})

	log.Info().
		Str("api", appConfig.API.BaseURL).
		Str("session_driver", appConfig.Session.Driver).
		Msg("portal starting")
	return runServer(ctx, e, ":"+appConfig.Port, log)
}
