package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/infrastructure/db/mongo"
	"github.com/talentloop/portal/internal/infrastructure/session"
	"github.com/talentloop/portal/internal/stubapi"
	"github.com/talentloop/portal/pkg/logger"
)

var stubAPICmd = &cobra.Command{
	Use:   "stub-api",
	Short: "Run a local stand-in for the hosted account backend",
	Long: `Run a development backend exposing the same endpoints as the hosted one:
signup, login, who-am-i, user detail, role selection, onboarding stage,
password recovery and transactional mail. Mails, including reset codes,
are printed to the log.

Accounts live in memory unless STUB_STORE=mongo.`,
	RunE: runStubAPI,
}

func init() {
	rootCmd.AddCommand(stubAPICmd)
}

func runStubAPI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Component("stub-api")

	st, err := openStores(ctx, appConfig.Stub.Store, appConfig.Stub.OTPDriver)
	if err != nil {
		return err
	}
	defer st.close()

	var repo ports.AccountRepository
	switch appConfig.Stub.Store {
	case "", session.DriverMemory:
		repo = stubapi.NewMemoryAccountRepository()
	case session.DriverMongo:
		if err := mongo.EnsureIndexes(ctx, st.mongo); err != nil {
			return err
		}
		repo = mongo.NewAccountRepository(st.mongo)
	default:
		return fmt.Errorf("unsupported stub store: %s", appConfig.Stub.Store)
	}

	otps, err := session.NewKV(session.Config{Driver: appConfig.Stub.OTPDriver}, st.deps())
	if err != nil {
		return err
	}

	svc := stubapi.NewService(repo, otps, stubapi.NewOutbox(logger.Component("outbox")), stubapi.Options{
		JWTSecret: appConfig.Stub.JWTSecret,
		TokenTTL:  appConfig.Stub.TokenTTL,
		Logger:    log,
	})

	e := stubapi.NewRouter(svc, appConfig.Stub.JWTSecret, st.probes(), log)
	return runServer(ctx, e, ":"+appConfig.Stub.Port, log)
}
