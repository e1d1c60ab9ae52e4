package lower

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gnolang/noreturn/internal"
)

const document = `
name: demo
root:
  name: Main
  properties:
    - {name: cond, type: bool}
  bindings:
    - name: value
      type: int
      expr:
        block:
          - if: {cond: {prop: cond}, then: {return: {int: 1}}}
          - int: 2
`

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Run(filePath string) (*internal.Report, error) {
	args := m.Called(filePath)
	report, _ := args.Get(0).(*internal.Report)
	return report, args.Error(1)
}

func (m *mockEngine) RunSource(name string, source []byte) (*internal.Report, error) {
	args := m.Called(name, source)
	report, _ := args.Get(0).(*internal.Report)
	return report, args.Error(1)
}

func createTempFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(paths[i]), 0o755))
		require.NoError(t, os.WriteFile(paths[i], []byte(document), 0o644))
	}
	return paths
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	expected := &internal.Report{Filename: "test.yaml", Document: "demo"}
	engine := new(mockEngine)
	engine.On("Run", "test.yaml").Return(expected, nil)

	report, err := ProcessFile(engine, "test.yaml")
	assert.NoError(t, err)
	assert.Equal(t, expected, report)
	engine.AssertExpectations(t)
}

func TestProcessSources(t *testing.T) {
	t.Parallel()

	engine := new(mockEngine)
	engine.On("RunSource", "a.yaml", []byte("a")).Return(&internal.Report{Filename: "a.yaml"}, nil)
	engine.On("RunSource", "b.yaml", []byte("b")).Return(&internal.Report{Filename: "b.yaml"}, nil)

	reports, err := ProcessSources(context.Background(), zaptest.NewLogger(t), engine, map[string][]byte{
		"b.yaml": []byte("b"),
		"a.yaml": []byte("a"),
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "a.yaml", reports[0].Filename)
	assert.Equal(t, "b.yaml", reports[1].Filename)
	engine.AssertExpectations(t)

	failing := new(mockEngine)
	failing.On("RunSource", "c.yaml", []byte("c")).Return(nil, errors.New("boom"))
	_, err = ProcessSources(context.Background(), nil, failing, map[string][]byte{"c.yaml": []byte("c")})
	assert.EqualError(t, err, "boom")
}

func TestProcessPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "b.yaml", "a.yml", "nested/c.yaml")
	createTempFiles(t, tempDir, "notes.txt", ".noreturn.yaml", ".hidden/d.yaml")

	engine := new(mockEngine)
	for _, p := range paths {
		engine.On("Run", p).Return(&internal.Report{Filename: p}, nil)
	}

	reports, err := ProcessPath(context.Background(), zaptest.NewLogger(t), engine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	// filepath.Walk visits in lexical order
	assert.Equal(t, paths[1], reports[0].Filename)
	assert.Equal(t, paths[0], reports[1].Filename)
	assert.Equal(t, paths[2], reports[2].Filename)
	engine.AssertExpectations(t)
	engine.AssertNumberOfCalls(t, "Run", 3)
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "one.yaml", "skip.txt")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return(&internal.Report{Filename: paths[0]}, nil)

	reports, err := ProcessPath(context.Background(), nil, engine, paths[0], ProcessFile)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	reports, err = ProcessPath(context.Background(), nil, engine, paths[1], ProcessFile)
	require.NoError(t, err)
	assert.Empty(t, reports)
	engine.AssertNumberOfCalls(t, "Run", 1)

	_, err = ProcessPath(context.Background(), nil, engine, filepath.Join(tempDir, "missing.yaml"), ProcessFile)
	assert.Error(t, err)
}

func TestProcessPathKeepsGoingOnErrors(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.yaml", "b.yaml", "c.yaml")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return(&internal.Report{Filename: paths[0]}, nil)
	engine.On("Run", paths[1]).Return(nil, errors.New("bad document"))
	engine.On("Run", paths[2]).Return(&internal.Report{Filename: paths[2]}, nil)

	reports, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad document")
	require.Len(t, reports, 2)
	assert.Equal(t, paths[0], reports[0].Filename)
	assert.Equal(t, paths[2], reports[1].Filename)
}

func TestProcessPathCanceled(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	createTempFiles(t, tempDir, "a.yaml", "b.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := new(mockEngine)
	reports, err := ProcessPath(ctx, nil, engine, tempDir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
	engine.AssertNotCalled(t, "Run", mock.Anything)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "first/a.yaml", "second/b.yaml")

	engine := new(mockEngine)
	for _, p := range paths {
		engine.On("Run", p).Return(&internal.Report{Filename: p}, nil)
	}

	reports, err := ProcessFiles(context.Background(), nil, engine,
		[]string{filepath.Dir(paths[1]), paths[0]}, ProcessFile)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, paths[1], reports[0].Filename)
	assert.Equal(t, paths[0], reports[1].Filename)

	_, err = ProcessFiles(context.Background(), nil, engine, []string{filepath.Join(tempDir, "nope")}, ProcessFile)
	assert.Error(t, err)
}

func TestNewAndProcessWithRealEngine(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, DefaultConfigPath)
	config := DefaultConfig()
	config.CacheDir = filepath.Join(tempDir, ".cache")
	require.NoError(t, WriteConfig(configPath, config))

	paths := createTempFiles(t, tempDir, "demo.yaml")

	engine, err := New(configPath, zaptest.NewLogger(t))
	require.NoError(t, err)

	reports, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	report := reports[0]
	assert.Equal(t, paths[0], report.Filename)
	require.Len(t, report.Rewrites, 1)
	assert.True(t, report.Rewrites[0].Verified())
	assert.DirExists(t, config.CacheDir)

	outDir := filepath.Join(tempDir, "out")
	written, err := WriteDocument(report, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "demo.yaml"), written)
	content, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, report.Output, content)
}

func TestNewWithoutConfig(t *testing.T) {
	t.Parallel()

	engine, err := New("", nil)
	require.NoError(t, err)
	assert.NotNil(t, engine)

	engine, err = New(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.NotNil(t, engine)

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("verify: [\n"), 0o644))
	_, err = New(broken, nil)
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigPath)
	config := DefaultConfig()
	config.Parallel = true
	config.MaxVerifyInputs = 4
	require.NoError(t, WriteConfig(path, config))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)

	opts := loaded.Options()
	assert.True(t, opts.Parallel)
	assert.True(t, opts.Verify)
	assert.Equal(t, 4, opts.MaxVerifyInputs)

	partial := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("parallel: true\n"), 0o644))
	loaded, err = LoadConfig(partial)
	require.NoError(t, err)
	assert.True(t, loaded.Parallel)
	assert.True(t, loaded.Verify)
	assert.Equal(t, "noreturn", loaded.Name)
}

func TestWriteDocumentWithoutFilename(t *testing.T) {
	t.Parallel()

	written, err := WriteDocument(&internal.Report{Document: "demo", Output: []byte("name: demo\n")}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "demo.yaml", filepath.Base(written))

	_, err = WriteDocument(&internal.Report{}, "")
	assert.Error(t, err)
}
