package lower

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/noreturn/internal"
)

// ProgressOutput receives the progress bar drawn while a directory is
// processed.
var ProgressOutput io.Writer = os.Stderr

type Engine interface {
	Run(filename string) (*internal.Report, error)
	RunSource(name string, source []byte) (*internal.Report, error)
}

// Processor lowers a single file with engine.
type Processor func(engine Engine, path string) (*internal.Report, error)

// New creates an engine configured from configPath. An empty path, or a
// path that does not exist, selects the default configuration.
func New(configPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, loaded, err := ResolveConfig(configPath)
	if err != nil {
		return nil, err
	}
	if !loaded {
		return NewWithConfig(config, logger)
	}
	return NewWithConfig(config, logger, configPath)
}

// NewWithConfig creates an engine from config. Cached reports are dropped
// whenever one of the dependency files changes.
func NewWithConfig(config Config, logger *zap.Logger, dependencies ...string) (*internal.Engine, error) {
	engine, err := internal.NewEngine(logger, config.Options())
	if err != nil {
		return nil, err
	}
	for _, dep := range dependencies {
		if err := engine.AddCacheDependency(dep); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources map[string][]byte,
) ([]*internal.Report, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var reports []*internal.Report
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := ProcessSource(engine, name, sources[name])
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.String("source", name), zap.Error(err))
			}
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor Processor,
) ([]*internal.Report, error) {
	var reports []*internal.Report
	for _, path := range paths {
		r, err := ProcessPath(ctx, logger, engine, path, processor)
		reports = append(reports, r...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return reports, err
		}
	}
	return reports, nil
}

// ProcessPath lowers path, or every document below it when it is a
// directory. Reports come back in file order. A failing file does not stop
// the others; the errors are joined into the returned error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor Processor,
) ([]*internal.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.IsDocumentFile(path) {
			if logger != nil {
				logger.Debug("Skipping non-document file", zap.String("file", path))
			}
			return nil, nil
		}
		report, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []*internal.Report{report}, nil
	}

	files, err := collectDocuments(path)
	if err != nil {
		return nil, err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make([]*internal.Report, len(files))
	errs := make([]error, len(files))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, fp := range files {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			bar.Describe(filepath.Base(fp))
			report, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				errs[i] = err
			} else {
				results[i] = report
			}
			_ = bar.Add(1)
		}()
	}
	wg.Wait()
	_ = bar.Finish()

	reports := make([]*internal.Report, 0, len(files))
	for _, r := range results {
		if r != nil {
			reports = append(reports, r)
		}
	}
	if err := ctx.Err(); err != nil {
		return reports, err
	}
	return reports, errors.Join(errs...)
}

func ProcessFile(engine Engine, filePath string) (*internal.Report, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, name string, source []byte) (*internal.Report, error) {
	return engine.RunSource(name, source)
}

// collectDocuments lists the documents below root. Hidden files and
// directories, such as the configuration file, are skipped.
func collectDocuments(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		hidden := path != root && strings.HasPrefix(info.Name(), ".")
		if info.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden && internal.IsDocumentFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

// WriteDocument writes the rewritten document of report into outputDir,
// keeping the base name of the source file. It returns the written path.
func WriteDocument(report *internal.Report, outputDir string) (string, error) {
	if outputDir == "" {
		return "", errors.New("no output directory")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	name := filepath.Base(report.Filename)
	if name == "." || name == string(filepath.Separator) || !internal.IsDocumentFile(name) {
		name = report.Document + ".yaml"
	}
	out := filepath.Join(outputDir, name)
	if err := os.WriteFile(out, report.Output, 0o644); err != nil {
		return "", err
	}
	return out, nil
}
