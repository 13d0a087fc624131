package main

import (
	"log"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/onramp-labs/backend/internal/entity"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()
	s.loadGateways()
	s.loadDomains()
	s.loadRouter()

	if err := entity.MigrateTable(s.newContext()); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	log.Printf("Starting server on %s\n", s.configs.ApiServer.Address())
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}
