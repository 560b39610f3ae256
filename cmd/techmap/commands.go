package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"techmap/internal/association"
	"techmap/internal/config"
	"techmap/internal/criteria"
	"techmap/internal/diagnostic"
	"techmap/internal/resolve"
	"techmap/internal/store"
	"techmap/internal/techniques"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every specification against the reference grammar",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Build the technique index and write it as YAML",
		Args:  cobra.NoArgs,
		RunE:  runResolve,
	}
	cmd.Flags().String("out", "", "Output file (default: stdout)")
	cmd.Flags().String("store", "", "Also persist the index in this BadgerDB directory")

	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report indexed techniques missing from the registry",
		Long: `check compares an index with the technique registry. The index is read
from --index (a file written by resolve), or from --store for the selected
version, or else resolved from the specifications.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
	cmd.Flags().String("index", "", "Check this YAML index instead of resolving")
	cmd.Flags().String("store", "", "Check the index stored in this BadgerDB directory instead of resolving")

	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [technique-id]",
		Short: "Print the stored records of a technique, or list stored techniques",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}
	cmd.Flags().String("store", "", "BadgerDB directory written by resolve --store")

	return cmd
}

func newVersionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the guideline versions with a stored index",
		Args:  cobra.NoArgs,
		RunE:  runVersions,
	}
	cmd.Flags().String("store", "", "BadgerDB directory written by resolve --store")

	return cmd
}

// session is the configuration and logger shared by one command run.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

func newSession(cmd *cobra.Command, required ...string) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(required...); err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), cfg),
		out:    cmd.OutOrStdout(),
	}, nil
}

// loadSpecs loads the specifications, printing every schema problem found.
func (s *session) loadSpecs() (association.Specifications, error) {
	specs, err := association.LoadDir(s.cfg.SpecsDir)
	if err != nil {
		diags := association.Diagnose(err)
		s.print(diags)

		return nil, fmt.Errorf("%d problem(s) in %s", len(diags.Errors), s.cfg.SpecsDir)
	}

	s.logger.Debug("loaded specifications", slog.Int("count", len(specs)), slog.String("dir", s.cfg.SpecsDir))

	return specs, nil
}

func (s *session) resolve() (resolve.Index, error) {
	specs, err := s.loadSpecs()
	if err != nil {
		return nil, err
	}

	all, err := criteria.LoadFile(s.cfg.CriteriaFile)
	if err != nil {
		return nil, err
	}

	active := all.ForVersion(s.cfg.Version)
	index := resolve.NewResolver(active, s.cfg.ResolveConfig(s.logger)).Resolve(specs)

	s.logger.Info("resolved technique index",
		slog.String("version", s.cfg.Version),
		slog.Int("criteria", len(active)),
		slog.Int("techniques", len(index)),
	)

	return index, nil
}

func (s *session) print(diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		fmt.Fprintf(s.out, "%s: %s\n", d.Severity, d)
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, "specs_dir")
	if err != nil {
		return err
	}

	specs, err := s.loadSpecs()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "ok: %d specification(s)\n", len(specs))

	return nil
}

func runResolve(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, "specs_dir", "criteria_file")
	if err != nil {
		return err
	}

	index, err := s.resolve()
	if err != nil {
		return err
	}

	if s.cfg.StoreDir != "" {
		if err := persist(s.cfg.StoreDir, s.cfg.Version, index); err != nil {
			return err
		}

		s.logger.Info("stored technique index", slog.String("dir", s.cfg.StoreDir))
	}

	if s.cfg.Output == "" || s.cfg.Output == "-" {
		data, err := resolve.ExportYAML(index)
		if err != nil {
			return err
		}

		_, err = s.out.Write(data)

		return err
	}

	if err := resolve.WriteFile(index, s.cfg.Output); err != nil {
		return err
	}

	s.logger.Info("wrote technique index", slog.String("path", s.cfg.Output))

	return nil
}

// withStore opens the store in dir for the duration of fn. A failing
// Close is reported even when fn succeeded.
func withStore(dir string, fn func(db *store.Store) error) (err error) {
	db, err := store.Open(store.Options{Dir: dir})
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, db.Close())
	}()

	return fn(db)
}

func persist(dir, version string, index resolve.Index) error {
	return withStore(dir, func(db *store.Store) error {
		return db.Put(version, index)
	})
}

func runCheck(cmd *cobra.Command, _ []string) error {
	indexFile, _ := cmd.Flags().GetString("index")
	fromStore := cmd.Flags().Changed("store")

	required := []string{"techniques_file"}
	if indexFile == "" && !fromStore {
		required = append(required, "specs_dir", "criteria_file")
	}

	s, err := newSession(cmd, required...)
	if err != nil {
		return err
	}

	var index resolve.Index

	switch {
	case indexFile != "":
		index, err = readIndex(indexFile)
	case fromStore:
		err = withStore(s.cfg.StoreDir, func(db *store.Store) error {
			var loadErr error
			index, loadErr = db.Load(s.cfg.Version)

			return loadErr
		})
	default:
		index, err = s.resolve()
	}

	if err != nil {
		return err
	}

	registry, err := techniques.LoadFile(s.cfg.TechniquesFile)
	if err != nil {
		return err
	}

	diags := techniques.Check(index, registry)
	s.print(diags)

	fmt.Fprintf(s.out, "%d technique(s), %d phantom, %d unused\n",
		len(index), len(diags.Warnings), len(diags.Infos))

	if diags.HasErrors() {
		return diags.Error()
	}

	return nil
}

func readIndex(path string) (resolve.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file %s: %w", path, err)
	}

	return resolve.ParseExport(data)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "store_dir")
	if err != nil {
		return err
	}

	var registry techniques.Registry
	if s.cfg.TechniquesFile != "" {
		if registry, err = techniques.LoadFile(s.cfg.TechniquesFile); err != nil {
			return err
		}
	}

	return withStore(s.cfg.StoreDir, func(db *store.Store) error {
		if len(args) == 0 {
			return s.listTechniques(db, registry)
		}

		return s.showTechnique(db, registry, args[0])
	})
}

func (s *session) listTechniques(db *store.Store, registry techniques.Registry) error {
	ids, err := db.Techniques(s.cfg.Version)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if t, ok := registry[id]; ok {
			fmt.Fprintf(s.out, "%s\t%s\n", id, t.Title)
			continue
		}

		fmt.Fprintln(s.out, id)
	}

	return nil
}

func (s *session) showTechnique(db *store.Store, registry techniques.Registry, id string) error {
	records, err := db.Get(s.cfg.Version, id)
	if err != nil {
		return err
	}

	if t, ok := registry[id]; ok {
		fmt.Fprintf(s.out, "# %s: %s (%s)\n", t.ID, t.Title, t.Technology)
	}

	data, err := resolve.ExportYAML(resolve.Index{id: records})
	if err != nil {
		return err
	}

	_, err = s.out.Write(data)

	return err
}

func runVersions(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, "store_dir")
	if err != nil {
		return err
	}

	return withStore(s.cfg.StoreDir, func(db *store.Store) error {
		versions, err := db.Versions()
		if err != nil {
			return err
		}

		for _, v := range versions {
			fmt.Fprintln(s.out, v)
		}

		return nil
	})
}
