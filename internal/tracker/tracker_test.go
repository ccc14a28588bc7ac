package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/manifest"
)

type fakeBackend struct {
	summaries map[string]string
	calls     []string
}

func (f *fakeBackend) Name() string         { return "Bugzilla" }
func (f *fakeBackend) Key() string          { return manifest.KeyBugzilla }
func (f *fakeBackend) Noun() string         { return "bug" }
func (f *fakeBackend) URL(id string) string { return "https://bz/show_bug.cgi?id=" + id }

func (f *fakeBackend) Summary(ctx context.Context, id string) (string, error) {
	f.calls = append(f.calls, id)
	s, ok := f.summaries[id]
	if !ok {
		return "", errors.New("bug not found")
	}
	return s, nil
}

func TestResolve(t *testing.T) {
	m, err := manifest.Parse([]byte(`
mixed:
  bz: [101, 202]
sentinel:
  bz: [0]
sentinel-last:
  bz: [303, 0]
empty:
  bz: []
nokey:
  jira: [1]
flat: [404]
`))
	require.NoError(t, err)

	tests := []struct {
		name      string
		job       string
		want      []Reference
		wantCalls []string
	}{
		{
			name: "failed lookup keeps order and url",
			job:  "mixed",
			want: []Reference{
				{Name: "101: Bugzilla API Call Error", URL: "https://bz/show_bug.cgi?id=101"},
				{Name: "Fix X", URL: "https://bz/show_bug.cgi?id=202"},
			},
			wantCalls: []string{"101", "202"},
		},
		{
			name: "sentinel",
			job:  "sentinel",
			want: []Reference{{Name: "No bug on file"}},
		},
		{
			name: "sentinel is exclusive",
			job:  "sentinel-last",
			want: []Reference{{Name: "No bug on file"}},
		},
		{
			name: "empty list",
			job:  "empty",
			want: []Reference{},
		},
		{
			name: "missing job",
			job:  "unknown",
			want: []Reference{{Name: "Could not find relevant bug"}},
		},
		{
			name: "job entry is not a mapping",
			job:  "flat",
			want: []Reference{{Name: "Could not find relevant bug"}},
		},
		{
			name: "missing tracker key",
			job:  "nokey",
			want: []Reference{{Name: "Could not find relevant bug"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{summaries: map[string]string{"202": "Fix X"}}
			got := NewResolver(b, m).Resolve(context.Background(), tt.job)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantCalls, b.calls)
		})
	}
}

func TestLookupReference(t *testing.T) {
	b := &fakeBackend{}
	ok := Lookup{ID: "7", Summary: "Known issue"}.Reference(b)
	assert.Equal(t, Reference{Name: "Known issue", URL: "https://bz/show_bug.cgi?id=7"}, ok)

	failed := Lookup{ID: "7", Err: errors.New("boom")}.Reference(b)
	assert.Equal(t, Reference{Name: "7: Bugzilla API Call Error", URL: "https://bz/show_bug.cgi?id=7"}, failed)
}

func TestNotApplicableRefs(t *testing.T) {
	assert.Equal(t, []Reference{{Name: "N/A"}}, NotApplicableRefs())
}
