package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redhat-openshift-ecosystem/jeeves/pkg/cmd/report"
	"github.com/redhat-openshift-ecosystem/jeeves/pkg/version"
)

const logFile = "jeeves.log"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jeeves",
	Short: "Jenkins job status reports",
	Long:  `jeeves reports the status of the last build of a set of Jenkins jobs, with the known Bugzilla and Jira blockers of the failing ones, and mails the report`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error

		// Validate logging level
		loglevel := viper.GetString("log-level")
		logrusLevel, err := log.ParseLevel(loglevel)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)

		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})

		log.SetOutput(os.Stdout)
		fdLog, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			log.Errorf("error opening file %s: %v", logFile, err)
		} else {
			log.AddHook(&logwriter.Hook{
				Writer: fdLog,
				LogLevels: []log.Level{
					log.PanicLevel,
					log.FatalLevel,
					log.ErrorLevel,
					log.WarnLevel,
					log.InfoLevel,
					log.DebugLevel,
				},
			})
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initBindFlag(flag string) {
	err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	if err != nil {
		log.Warnf("Unable to bind flag %s\n", flag)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "logging level")
	initBindFlag("log-level")

	rootCmd.AddCommand(report.NewCmdReport())
	rootCmd.AddCommand(version.NewCmdVersion())
}

// initConfig reads in ENV variables if set, e.g. JEEVES_LOG_LEVEL.
func initConfig() {
	viper.SetEnvPrefix("JEEVES")
	viper.AutomaticEnv()
}
