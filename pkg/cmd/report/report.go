package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/ci/jenkins"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/config"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/mail"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/manifest"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/metrics"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/report"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/report/publish"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker/bugzilla"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker/jira"
)

type Input struct {
	configFile string
	manifest   string
	template   string
	saveTo     string
	dryRun     bool
	json       bool
	publish    bool
}

func NewCmdReport() *cobra.Command {
	data := Input{}
	cmd := &cobra.Command{
		Use:   "report [config.yaml]",
		Short: "Build the Jenkins job status report and mail it.",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				data.configFile = args[0]
			}
			if err := checkFlags(&data); err != nil {
				log.Error(err)
				os.Exit(1)
			}
			if err := processReport(cmd.Context(), &data); err != nil {
				log.WithError(err).Error("could not build the report")
				os.Exit(1)
			}
		},
		Args: cobra.MaximumNArgs(1),
	}

	cmd.Flags().StringVarP(
		&data.configFile, "config", "c", config.DefaultConfigFile,
		"Configuration file. Example: -c config.yaml",
	)
	cmd.Flags().StringVarP(
		&data.manifest, "blockers", "b", "",
		"Blockers manifest, overrides the 'blockers' configuration. Example: -b blockers.yaml",
	)
	cmd.Flags().StringVarP(
		&data.template, "template", "t", "",
		"HTML template used to render the report. Defaults to the embedded template.",
	)
	cmd.Flags().StringVarP(
		&data.saveTo, "save-to", "s", "",
		"Save the report artifacts to disk. Example: -s ./results",
	)
	cmd.Flags().BoolVarP(
		&data.dryRun, "dry-run", "", false,
		"Build the report and show the summary without sending the mail or uploading files.",
	)
	cmd.Flags().BoolVarP(
		&data.json, "json", "", false,
		"Show report in json format, no mail is sent",
	)
	cmd.Flags().BoolVarP(
		&data.publish, "publish", "", false,
		"Upload the saved artifacts to the configured bucket. Requires --save-to.",
	)

	return cmd
}

// checkFlags
func checkFlags(input *Input) error {
	if input.publish && input.saveTo == "" {
		return errors.New("--publish requires --save-to")
	}
	return nil
}

// processReport builds the report of the configured jobs and delivers it.
func processReport(ctx context.Context, input *Input) error {
	log.Println("Creating report...")
	timers := metrics.NewTimers()
	timers.Add("report-total")

	timers.Set("setup")
	cfg, err := config.Load(config.NewViper(), input.configFile)
	if err != nil {
		return err
	}
	if input.manifest != "" {
		cfg.Manifest = input.manifest
	}
	blockers, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return err
	}

	jc := jenkins.NewClient(cfg.JenkinsURL, cfg.Username, cfg.APIToken)
	user, err := jc.WhoAmI(ctx)
	if err != nil {
		return errors.Wrap(err, "error starting the Jenkins session")
	}
	jenkinsVersion, err := jc.Version(ctx)
	if err != nil {
		return errors.Wrap(err, "error starting the Jenkins session")
	}
	log.Debugf("Connected to Jenkins %s as %s", jenkinsVersion, user.Email)

	jiraBackend, err := jira.New(cfg.JiraURL, jira.Options{
		Certificate: cfg.Certificate,
		Token:       cfg.JiraToken,
	})
	if err != nil {
		return err
	}
	run := report.RunContext{
		SearchField: cfg.SearchField,
		Jobs:        jc,
		Bugs:        tracker.NewResolver(bugzilla.New(cfg.BugzillaURL, cfg.BugzillaAPIKey), blockers),
		Tickets:     tracker.NewResolver(jiraBackend, blockers),
	}

	timers.Set("aggregate")
	rows, summary, err := report.NewAggregator(run).Aggregate(ctx)
	if err != nil {
		return err
	}

	timers.Set("render")
	generatedAt := time.Now()
	re := report.NewReport(rows, summary, &report.ReportRuntime{
		GeneratedBy:    user.Email,
		JenkinsVersion: jenkinsVersion,
		GeneratedAt:    generatedAt,
	})
	tmpl, err := report.LoadTemplate(input.template)
	if err != nil {
		return err
	}
	html, err := re.RenderHTML(tmpl)
	if err != nil {
		return err
	}
	timers.Add("render")
	timers.Add("report-total")
	re.Runtime.Timers = timers

	if input.json {
		resReport, err := re.ShowJSON()
		if err != nil {
			return err
		}
		fmt.Println(resReport)
		return nil
	}

	if input.saveTo != "" {
		files, err := re.SaveResults(input.saveTo, html)
		if err != nil {
			return err
		}
		if input.publish {
			if err := publishResults(cfg, files, generatedAt, input.dryRun); err != nil {
				return err
			}
		}
	}

	if err := showReportSummary(os.Stdout, re); err != nil {
		return err
	}
	log.Debugf("Report timers: %s", timers.String())

	if input.dryRun {
		log.Warn("DRY-RUN mode: the report mail is not sent")
		return nil
	}
	dispatcher, err := mail.NewDispatcher(cfg.SMTPHost)
	if err != nil {
		return err
	}
	return dispatcher.Send(mail.Message{
		From:    user.Email,
		To:      mail.Recipients(cfg.EmailTo),
		Subject: cfg.EmailSubject,
		HTML:    string(html),
	})
}

func publishResults(cfg *config.Config, files []string, at time.Time, dryRun bool) error {
	pub, err := publish.NewPublisher(cfg.Publish.Bucket, cfg.Publish.Region, cfg.Publish.Prefix, dryRun)
	if err != nil {
		return err
	}
	_, err = pub.Publish(files, map[string]bool{report.ReportFileNameJSON: true}, at)
	return err
}

func showReportSummary(w io.Writer, re *report.Report) error {
	fmt.Fprintf(w, "\n> Jenkins Job Status Report <\n\n")
	fmt.Fprintf(w, "%s\n\n", re.Header)

	tbWriter := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tbWriter, "VERSION\tJOB\tBUILD\tRESULT\tBUGS\tTICKETS\n")
	for _, row := range re.Rows {
		fmt.Fprintf(tbWriter, "%s\t%s\t%d\t%s\t%d\t%d\n",
			row.Version, row.JobName, row.BuildNumber, row.Outcome, len(row.Bugs), len(row.Tickets))
	}
	if err := tbWriter.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, o := range []report.Outcome{report.OutcomeSuccess, report.OutcomeUnstable, report.OutcomeFailure} {
		fmt.Fprintln(w, re.Summary.Line(o))
	}
	if line := re.Summary.ErrorLine(); line != "" {
		fmt.Fprintln(w, line)
	}
	return nil
}
