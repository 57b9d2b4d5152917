package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"vlmbench/internal/metadata"
)

// runImport builds the handler for the import-metadata command. It copies
// per-id metadata directories into the sqlite or redis store named by the
// config so later runs can read from it.
func runImport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		var (
			global globalFlags
			rng    rangeFlags
			from   string
		)
		global.register(fs)
		rng.register(fs)
		fs.StringVar(&from, "from", "", "metadata directory to read (default metadata.dir)")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		sess, err := openSession(global, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start: %v\n", err)
			return ExitError
		}
		defer sess.Close()
		ids, err := sess.applyRange(rng).IDs()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if from == "" {
			from = sess.cfg.Metadata.Dir
		} else if !filepath.IsAbs(from) {
			from = filepath.Join(filepath.Dir(sess.configPath), from)
		}

		src, err := metadata.NewDirStore(from)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitError
		}
		defer src.Close()
		store, err := sess.openMetadataStore()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitError
		}
		dst, ok := store.(metadata.Writer)
		if !ok {
			fmt.Fprintf(stderr, "metadata.kind %q cannot be imported into; use sqlite or redis\n", sess.cfg.Metadata.Kind)
			return ExitUsage
		}

		ctx, stop := notifyContext(context.Background())
		defer stop()
		stats, err := metadata.Import(ctx, src, dst, ids)
		if err != nil {
			fmt.Fprintf(stderr, "Import failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Imported %d skip markers, %d labels, %d info records into %s\n",
			stats.Skips, stats.Labels, stats.Infos, sess.cfg.Metadata.Kind)
		return ExitOK
	}
}
