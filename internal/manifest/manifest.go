// Package manifest reads the per-job list of known blockers, keyed by issue
// tracker, from a YAML file:
//
//	osp-17-deploy:
//	  bz: [2155001, 2155002]
//	  jira: [OSPRH-1234]
//	osp-16-deploy:
//	  bz: [0]
//	  jira: [0]
//
// The ID 0 means "no issue on file".
package manifest

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	KeyBugzilla = "bz"
	KeyJira     = "jira"

	// NoIssue is the sentinel ID recorded when a job has no known issue.
	NoIssue = "0"
)

// Manifest maps a job name to its issue IDs per tracker key. Job entries are
// kept undecoded until looked up so a malformed entry only affects its own job.
type Manifest map[string]interface{}

// Load reads and parses the manifest file at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading blocker configuration data from %s", path)
	}
	return Parse(data)
}

// Parse decodes a manifest document.
func Parse(data []byte) (Manifest, error) {
	m := Manifest{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "error parsing blocker configuration data")
	}
	return m, nil
}

// IDs returns the issue IDs recorded for job under the tracker key. IDs are
// returned in file order as strings; integer IDs are formatted in base 10.
func (m Manifest) IDs(job, key string) ([]string, error) {
	entry, ok := m[job]
	if !ok {
		return nil, errors.Errorf("job %q not found in manifest", job)
	}
	raw, ok, err := lookupKey(entry, key)
	if err != nil {
		return nil, errors.Wrapf(err, "job %q", job)
	}
	if !ok {
		return nil, errors.Errorf("job %q has no %q entry in manifest", job, key)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Errorf("job %q: %q entry is not a list", job, key)
	}
	ids := make([]string, 0, len(list))
	for _, item := range list {
		id, err := formatID(item)
		if err != nil {
			return nil, errors.Wrapf(err, "job %q: %q entry", job, key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// lookupKey returns the value of key in a job entry, failing when the entry
// is not a mapping.
func lookupKey(entry interface{}, key string) (interface{}, bool, error) {
	switch e := entry.(type) {
	case map[interface{}]interface{}:
		v, ok := e[key]
		return v, ok, nil
	case map[string]interface{}:
		v, ok := e[key]
		return v, ok, nil
	default:
		return nil, false, fmt.Errorf("entry is not a mapping of tracker keys (%T)", entry)
	}
}

func formatID(v interface{}) (string, error) {
	switch id := v.(type) {
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case string:
		if id == "" {
			return "", errors.New("empty issue id")
		}
		return id, nil
	default:
		return "", fmt.Errorf("unsupported issue id %v (%T)", v, v)
	}
}
