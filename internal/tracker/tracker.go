// Package tracker resolves the issues recorded for a job in the blocker
// manifest into human readable references, for any issue tracker backend.
package tracker

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/manifest"
)

// NotApplicable is the name of the placeholder reference of jobs that need no lookup.
const NotApplicable = "N/A"

// Reference is a resolved issue: a display name and a link. URL is empty
// when there is nothing to link to.
type Reference struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// NotApplicableRefs returns the placeholder list used for passing jobs.
func NotApplicableRefs() []Reference {
	return []Reference{{Name: NotApplicable}}
}

// Backend is an issue tracker able to summarize an issue by ID.
type Backend interface {
	// Name is the tracker name used in error placeholders, e.g. "Bugzilla".
	Name() string
	// Key is the tracker key of the manifest entries, e.g. "bz".
	Key() string
	// Noun names one issue of the tracker, e.g. "bug".
	Noun() string
	// URL returns the link to the issue; it never depends on a lookup.
	URL(id string) string
	// Summary looks up the issue title.
	Summary(ctx context.Context, id string) (string, error)
}

// Lookup is the outcome of one backend lookup.
type Lookup struct {
	ID      string
	Summary string
	Err     error
}

// Reference converts the lookup into a report reference; a failed lookup
// becomes a placeholder naming the ID, still linked to the issue.
func (l Lookup) Reference(b Backend) Reference {
	ref := Reference{Name: l.Summary, URL: b.URL(l.ID)}
	if l.Err != nil {
		ref.Name = fmt.Sprintf("%s: %s API Call Error", l.ID, b.Name())
	}
	return ref
}

// Resolver resolves manifest entries of one backend.
type Resolver struct {
	backend  Backend
	manifest manifest.Manifest
}

func NewResolver(b Backend, m manifest.Manifest) *Resolver {
	return &Resolver{backend: b, manifest: m}
}

// Backend returns the tracker the resolver queries.
func (r *Resolver) Backend() Backend {
	return r.backend
}

// Resolve returns the references of the issues recorded for job, in manifest
// order. It never fails: manifest errors and lookup errors are reported as
// placeholder references.
func (r *Resolver) Resolve(ctx context.Context, job string) []Reference {
	logger := log.WithFields(log.Fields{"job": job, "tracker": r.backend.Name()})

	ids, err := r.manifest.IDs(job, r.backend.Key())
	if err != nil {
		logger.WithError(err).Warn("error loading blocker configuration data")
		return []Reference{{Name: fmt.Sprintf("Could not find relevant %s", r.backend.Noun())}}
	}

	for _, id := range ids {
		if id == manifest.NoIssue {
			return []Reference{{Name: fmt.Sprintf("No %s on file", r.backend.Noun())}}
		}
	}

	refs := make([]Reference, 0, len(ids))
	for _, id := range ids {
		l := r.lookup(ctx, id)
		if l.Err != nil {
			logger.WithError(l.Err).Warnf("%s API Call Error for %s", r.backend.Name(), id)
		}
		refs = append(refs, l.Reference(r.backend))
	}
	return refs
}

func (r *Resolver) lookup(ctx context.Context, id string) Lookup {
	summary, err := r.backend.Summary(ctx, id)
	return Lookup{ID: id, Summary: summary, Err: err}
}
