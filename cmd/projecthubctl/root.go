package main

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"projecthub/internal/config"
	"projecthub/internal/database"
	"projecthub/internal/output"
	"projecthub/internal/repository"
	"projecthub/internal/service"
)

// Shared dependencies, initialized in cobra.OnInitialize.
var (
	ui  *output.UI
	cfg *config.Config

	verbose  bool
	jsonOut  bool
	dbHandle *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:   "projecthubctl",
	Short: "Operate a projecthub database from the terminal",
	Long: `projecthubctl applies schema migrations and inspects issues
directly against the database configured for the projecthub server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	cfg = config.Load()
}

// openDB connects once per invocation.
func openDB() (*gorm.DB, error) {
	if dbHandle != nil {
		return dbHandle, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ui.VerboseLog("connecting to %s database", cfg.DBDriver)
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	dbHandle = db
	return db, nil
}

func issueService() (*service.IssueService, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	return service.NewIssueService(repository.NewStore(db)), nil
}
