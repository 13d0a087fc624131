package main

import (
	"github.com/urfave/cli/v2"

	"github.com/onramp-labs/backend/internal/domain/cron"
	"github.com/onramp-labs/backend/internal/entity"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()
	s.loadGateways()
	s.loadDomains()

	ctx := s.newContext()
	if err := entity.MigrateTable(ctx); err != nil {
		return err
	}

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewExpireTransactionsCronJob(s.onRampDomain))
	cronJobManager.Start(ctx)

	return nil
}
