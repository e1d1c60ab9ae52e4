// Package internal drives return statement elimination over whole documents.
//
// Key components:
//
// Engine: loads YAML documents, runs the passes.RemoveReturn pass over every
// binding and collects a Report. With Options.Verify set, each rewrite is
// checked against the original tree by the eval package, which enumerates
// the bool properties of the owning component.
//
// Report: the outcome for one document. Rewrite entries carry the rendered
// tree before and after the pass, the temporaries that were introduced and
// the verification verdict. Output holds the rewritten document as YAML.
//
// Cache: a gob file under the cache directory that maps source files to
// their last Report. Entries are dropped when the file changes, when a
// registered dependency such as the configuration file changes, or when
// they are older than the configured maximum age.
//
// Watching: StartWatching lowers YAML documents again whenever they are
// written, until StopWatching is called.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, internal.Options{Verify: true})
//	if err != nil {
//	    // handle error
//	}
//
//	report, err := engine.Run("path/to/document.yaml")
//	if err != nil {
//	    // handle error
//	}
//
//	os.Stdout.Write(report.Output)
package internal
