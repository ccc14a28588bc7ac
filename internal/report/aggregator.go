package report

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/ptr"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/ci/jenkins"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker"
)

// JobSource is the CI server the report is built from.
type JobSource interface {
	ListJobs(ctx context.Context) ([]jenkins.Job, error)
	Snapshot(ctx context.Context, name string) (*jenkins.BuildSnapshot, error)
}

// IssueResolver resolves the known blockers of a job.
type IssueResolver interface {
	Resolve(ctx context.Context, job string) []tracker.Reference
}

// RunContext is the read-only input of one report run.
type RunContext struct {
	// SearchField selects the jobs by substring and anchors the version label.
	SearchField string
	Jobs        JobSource
	Bugs        IssueResolver
	Tickets     IssueResolver
}

// Row is the report line of one job.
type Row struct {
	Version     string              `json:"version"`
	JobName     string              `json:"jobName"`
	JobURL      string              `json:"jobURL"`
	BuildNumber int                 `json:"buildNumber"`
	BuildURL    string              `json:"buildURL"`
	Result      string              `json:"result"`
	Outcome     Outcome             `json:"outcome"`
	Bugs        []tracker.Reference `json:"bugs"`
	Tickets     []tracker.Reference `json:"tickets"`
}

// Aggregator builds the report rows and summary of a run.
type Aggregator struct {
	run RunContext
}

func NewAggregator(run RunContext) *Aggregator {
	return &Aggregator{run: run}
}

// Aggregate lists the jobs matching the search field and builds one row per
// job, processing jobs in the reverse of the order the CI server lists them.
// Jobs whose build cannot be fetched are skipped and not counted. Only a
// failure to list the jobs is returned as an error.
func (a *Aggregator) Aggregate(ctx context.Context) ([]*Row, Summary, error) {
	acc := newAccumulator()

	all, err := a.run.Jobs.ListJobs(ctx)
	if err != nil {
		return nil, acc.summary, errors.Wrap(err, "error fetching jobs from the CI server")
	}
	jobs := FilterJobs(all, a.run.SearchField)
	log.Infof("Processing %d of %d jobs matching %q", len(jobs), len(all), a.run.SearchField)

	for i := len(jobs) - 1; i >= 0; i-- {
		row, err := a.processJob(ctx, jobs[i].Name)
		if err != nil {
			log.WithField("job", jobs[i].Name).WithError(err).Warn("Jenkins API call error, skipping job")
			continue
		}
		acc.add(row)
	}
	return acc.rows, acc.summary, nil
}

func (a *Aggregator) processJob(ctx context.Context, name string) (*Row, error) {
	snap, err := a.run.Jobs.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}

	row := &Row{
		Version:     ExtractVersion(name, a.run.SearchField),
		JobName:     name,
		JobURL:      snap.JobURL,
		BuildNumber: snap.BuildNumber,
		BuildURL:    snap.BuildURL,
		Result:      ptr.Deref(snap.Result, ""),
		Outcome:     Classify(snap.Result),
	}
	log.WithField("job", name).Debugf("Last completed build %s classified as %s", snap, row.Outcome)

	switch {
	case row.Outcome == OutcomeSuccess:
		row.Bugs = tracker.NotApplicableRefs()
		row.Tickets = tracker.NotApplicableRefs()
	case row.Outcome.NeedsResolution():
		row.Bugs, row.Tickets = a.resolve(ctx, name)
	default:
		row.Bugs = []tracker.Reference{}
		row.Tickets = []tracker.Reference{}
	}
	return row, nil
}

// resolve queries both trackers at once; each list keeps its manifest order.
// Resolve degrades every error to a placeholder, so the group only joins the
// two lookups and Wait never reports an error.
func (a *Aggregator) resolve(ctx context.Context, name string) (bugs, tickets []tracker.Reference) {
	var g errgroup.Group
	g.Go(func() error {
		bugs = a.run.Bugs.Resolve(ctx, name)
		return nil
	})
	g.Go(func() error {
		tickets = a.run.Tickets.Resolve(ctx, name)
		return nil
	})
	g.Wait() //nolint:errcheck
	return bugs, tickets
}

// FilterJobs keeps the jobs whose name contains the search field, in order.
func FilterJobs(jobs []jenkins.Job, searchField string) []jenkins.Job {
	out := make([]jenkins.Job, 0, len(jobs))
	for _, j := range jobs {
		if strings.Contains(j.Name, searchField) {
			out = append(out, j)
		}
	}
	return out
}
