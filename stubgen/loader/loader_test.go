package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/errors"
	stubtest "github.com/teranos/stubgen/internal/testing"
)

// unitFile writes an empty placeholder so resolution finds the unit on disk
// and returns a fixture unit located at that path.
func unitFile(t *testing.T, dir, name string, requires ...string) *stubtest.Unit {
	t.Helper()
	path := stubtest.WriteFile(t, dir, name+".unit", "")
	return &stubtest.Unit{UnitName: name, Location: path, Requires: requires}
}

func TestLoadTargets_SearchPathOrder(t *testing.T) {
	a, b, extra := t.TempDir(), t.TempDir(), t.TempDir()
	ua := unitFile(t, a, "Acme.A")
	ub := unitFile(t, b, "Acme.B")

	l := New(stubtest.NewProvider(ua, ub), []string{extra, a})
	units, err := l.LoadTargets([]string{ua.Location, ub.Location})
	require.NoError(t, err)

	require.Len(t, units, 2)
	assert.Equal(t, []string{a, b, extra}, l.SearchPaths())
	assert.Equal(t, []string{"Acme.A", "Acme.B"}, l.Targets())
	assert.True(t, l.IsTarget("Acme.A"))
	assert.False(t, l.IsTarget("System.Runtime"))
}

func TestLoadTargets_DuplicateTargetLoadedOnce(t *testing.T) {
	dir := t.TempDir()
	u := unitFile(t, dir, "Acme.A")

	l := New(stubtest.NewProvider(u), nil)
	units, err := l.LoadTargets([]string{u.Location, u.Location})
	require.NoError(t, err)
	assert.Len(t, units, 1)
	assert.Len(t, l.Units(), 1)
}

func TestLoadTargets_ResolvesDependenciesFromExtraPaths(t *testing.T) {
	targetDir, libDir := t.TempDir(), t.TempDir()
	core := unitFile(t, libDir, "System.Runtime")
	app := unitFile(t, targetDir, "Acme.App", "System.Runtime, Version=4.0.0")

	p := stubtest.NewProvider(app, core)
	l := New(p, []string{libDir})
	_, err := l.LoadTargets([]string{app.Location})
	require.NoError(t, err)

	assert.Equal(t, []string{"System.Runtime, Version=4.0.0"}, p.Resolves)
	assert.False(t, l.IsTarget("System.Runtime"))
}

func TestLoadTargets_UnresolvedIsFatal(t *testing.T) {
	dir := t.TempDir()
	app := unitFile(t, dir, "Acme.App", "Missing.Lib")

	l := New(stubtest.NewProvider(app), nil)
	_, err := l.LoadTargets([]string{app.Location})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnresolved))
	assert.Contains(t, err.Error(), "Missing.Lib")
	assert.True(t, errors.IsFatalLoadError(err))
}

func TestResolve_FailureIsNotRetried(t *testing.T) {
	dir := t.TempDir()
	l := New(stubtest.NewProvider(), []string{dir})
	l.addSearchPath(dir)

	_, err := l.Resolve("Late.Lib")
	require.Error(t, err)

	// The unit appearing later does not change the outcome for this session.
	stubtest.WriteFile(t, dir, "Late.Lib.unit", "")
	_, err2 := l.Resolve("Late.Lib, Version=1.0.0")
	assert.Equal(t, err, err2)
}

func TestResolve_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	stubtest.WriteFile(t, filepath.Join(dir, "Acme.Lib.unit"), "placeholder", "")
	second := t.TempDir()
	want := stubtest.WriteFile(t, second, "Acme.Lib.unit", "")

	l := New(stubtest.NewProvider(), nil)
	l.addSearchPath(dir)
	l.addSearchPath(second)

	got, err := l.Resolve("Acme.Lib")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// Two sessions over one provider: the second session's resolver replaces
// the first instead of stacking with it.
func TestLoadTargets_ResolverReplacedAcrossSessions(t *testing.T) {
	firstDir, secondDir, libDir := t.TempDir(), t.TempDir(), t.TempDir()
	lib := unitFile(t, libDir, "Shared.Lib")
	first := unitFile(t, firstDir, "First.App")
	second := unitFile(t, secondDir, "Second.App", "Shared.Lib")

	p := stubtest.NewProvider(first, second, lib)

	_, err := New(p, nil).LoadTargets([]string{first.Location})
	require.NoError(t, err)

	// Only the second session knows libDir; if the first session's hook were
	// still consulted the dependency would be unresolved.
	s2 := New(p, []string{libDir})
	_, err = s2.LoadTargets([]string{second.Location})
	require.NoError(t, err)

	assert.Equal(t, []string{"Shared.Lib"}, p.Resolves)
	assert.Equal(t, []string{"Second.App"}, s2.Targets())
}

func TestLoadBuiltin(t *testing.T) {
	libDir := t.TempDir()
	core := unitFile(t, libDir, "System.Runtime")

	l := New(stubtest.NewProvider(core), []string{libDir})
	_, err := l.LoadTargets(nil)
	require.NoError(t, err)

	units, err := l.LoadBuiltin([]string{"System.Runtime, Version=4.0.0"})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "System.Runtime", units[0].Name())
	assert.False(t, l.IsTarget("System.Runtime"))

	_, err = l.LoadBuiltin([]string{"System.Console"})
	assert.True(t, errors.Is(err, errors.ErrUnresolved))

	// The resolution error reaches the caller as returned by Resolve.
	_, resolveErr := l.Resolve("System.Console")
	assert.Equal(t, resolveErr, err)
}

func TestLoadTargets_ProviderErrorReturnedAsIs(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "Absent.unit")
	p := stubtest.NewProvider()

	_, direct := p.Load(missing)
	require.Error(t, direct)

	_, err := New(p, nil).LoadTargets([]string{missing})
	require.Error(t, err)
	assert.Equal(t, direct.Error(), err.Error())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

type versionedUnit struct {
	*stubtest.Unit
	version string
}

func (u versionedUnit) Version() string { return u.version }

func TestCheckVersion_MismatchIsNotFatal(t *testing.T) {
	l := New(stubtest.NewProvider(), nil)
	u := versionedUnit{Unit: &stubtest.Unit{UnitName: "System.Runtime"}, version: "3.0.0"}

	assert.NotPanics(t, func() {
		l.checkVersion("System.Runtime, Version=4.0.0", u)
		l.checkVersion("System.Runtime", u)
	})
}
