package stubgen

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
)

// DiffKind classifies a file that differs between two stub trees.
type DiffKind string

const (
	DiffChanged DiffKind = "changed"
	// DiffMissing means the file would be generated but does not exist.
	DiffMissing DiffKind = "missing"
	// DiffStale means the file exists but would no longer be generated.
	DiffStale DiffKind = "stale"
)

// Difference is one file that is out of date.
type Difference struct {
	Path string
	Kind DiffKind
}

// CheckResult holds the result of comparing a fresh generation with an
// existing stub tree.
type CheckResult struct {
	UpToDate    bool
	Differences []Difference
	Report      *Report
}

// Check regenerates into a temporary directory and compares the result with
// the tree at opts.Dest, which is left untouched.
func Check(provider meta.Provider, newRenderer RendererFactory, opts Options) (*CheckResult, error) {
	tempDir, err := os.MkdirTemp("", "stubgen-check-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	existing := opts.Dest
	opts.Dest = tempDir

	report, err := New(provider, newRenderer, opts).Run()
	if err != nil {
		return nil, errors.Wrap(err, "failed to regenerate stubs")
	}

	stubName := opts.StubFileName
	if stubName == "" {
		stubName = DefaultStubFileName
	}
	result, err := CompareDirectories(tempDir, existing, stubName)
	if err != nil {
		return nil, err
	}
	result.Report = report
	return result, nil
}

// CompareDirectories compares the stub files named stubName under generated
// with those under existing. Other files in existing are ignored.
func CompareDirectories(generated, existing, stubName string) (*CheckResult, error) {
	want, err := collectStubs(generated, stubName)
	if err != nil {
		return nil, err
	}
	have, err := collectStubs(existing, stubName)
	if err != nil {
		return nil, err
	}

	var diffs []Difference
	for rel, path := range want {
		other, ok := have[rel]
		if !ok {
			diffs = append(diffs, Difference{Path: rel, Kind: DiffMissing})
			continue
		}
		different, err := filesAreDifferent(path, other)
		if err != nil {
			return nil, err
		}
		if different {
			diffs = append(diffs, Difference{Path: rel, Kind: DiffChanged})
		}
	}
	for rel := range have {
		if _, ok := want[rel]; !ok {
			diffs = append(diffs, Difference{Path: rel, Kind: DiffStale})
		}
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return &CheckResult{UpToDate: len(diffs) == 0, Differences: diffs}, nil
}

// collectStubs maps slash-separated relative paths of stub files under root
// to their absolute paths. A missing root holds no stubs.
func collectStubs(root, stubName string) (map[string]string, error) {
	stubs := make(map[string]string)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return stubs, nil
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != stubName {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		stubs[filepath.ToSlash(rel)] = path
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", root)
	}
	return stubs, nil
}

func filesAreDifferent(file1, file2 string) (bool, error) {
	content1, err := os.ReadFile(file1)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file1)
	}
	content2, err := os.ReadFile(file2)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file2)
	}
	return !bytes.Equal(content1, content2), nil
}
