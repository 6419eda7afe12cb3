package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repsejnworb/doc-migrator/internal/logging"
	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// --- Global flag values ---
var (
	configPath       string
	changesDir       string
	schemasDir       string
	schemeName       string
	symbols          []string
	currentVersion   string
	versionAttribute string
	logLevel         string

	subjectName string
	inPath      string
	outPath     string
	fromVersion string
	toVersion   string
	pretty      bool
	atVersion   string

	rootCmd = &cobra.Command{
		Use:           "migrate",
		Short:         "Move versioned JSON documents between schema versions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Migrate a document from its version (or --from) to --to (default: current)",
		RunE:  runMigrate,
	}

	describeCmd = &cobra.Command{
		Use:   "describe",
		Short: "List the recorded changes of each document type",
		RunE:  runDescribe,
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show the steps a migration between two versions applies",
		RunE:  runPlan,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate a document against the schema of a version",
		RunE:  runValidate,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfigPath, "configuration file; without one, --current (or --scheme enum with --symbols) is required")
	pf.StringVar(&changesDir, "changes", "", "directory containing change set files (JSON or YAML)")
	pf.StringVar(&schemasDir, "schemas", "", "directory containing <version>.json schemas")
	pf.StringVar(&schemeName, "scheme", "", "version scheme: enum|semver|integer|lexical")
	pf.StringSliceVar(&symbols, "symbols", nil, "ordered versions for the enum scheme")
	pf.StringVar(&currentVersion, "current", "", "current version (not used by the enum scheme)")
	pf.StringVar(&versionAttribute, "version-attribute", "", "slash path of the version attribute")
	pf.StringVar(&logLevel, "log-level", "", "debug|info|warn|error")

	runCmd.Flags().StringVar(&subjectName, "type", "", "document type (optional when only one is known)")
	runCmd.Flags().StringVar(&inPath, "in", "", "input document ('-' for stdin)")
	runCmd.Flags().StringVar(&outPath, "out", "-", "output file ('-' for stdout)")
	runCmd.Flags().StringVar(&fromVersion, "from", "", "source version (default: the document's version attribute)")
	runCmd.Flags().StringVar(&toVersion, "to", "", "target version (default: current)")
	runCmd.Flags().BoolVar(&pretty, "pretty", true, "pretty-print JSON")
	_ = runCmd.MarkFlagRequired("in")

	describeCmd.Flags().StringVar(&subjectName, "type", "", "document type (default: all)")

	planCmd.Flags().StringVar(&subjectName, "type", "", "document type (optional when only one is known)")
	planCmd.Flags().StringVar(&fromVersion, "from", "", "source version")
	planCmd.Flags().StringVar(&toVersion, "to", "", "target version")
	_ = planCmd.MarkFlagRequired("from")
	_ = planCmd.MarkFlagRequired("to")

	validateCmd.Flags().StringVar(&inPath, "in", "", "input document ('-' for stdin)")
	validateCmd.Flags().StringVar(&atVersion, "version", "", "schema version to validate against")
	_ = validateCmd.MarkFlagRequired("in")
	_ = validateCmd.MarkFlagRequired("version")

	rootCmd.AddCommand(runCmd, describeCmd, planCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and builds the runner.
func setup(cmd *cobra.Command) (runner, *zap.Logger, error) {
	cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, &cfg)
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	r, err := newRunner(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return r, log, nil
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("changes") {
		cfg.Changes = changesDir
	}
	if flags.Changed("schemas") {
		cfg.Schemas = schemasDir
	}
	if flags.Changed("scheme") {
		cfg.Versions.Scheme = schemeName
	}
	if flags.Changed("symbols") {
		cfg.Versions.Symbols = symbols
	}
	if flags.Changed("current") {
		cfg.Versions.Current = currentVersion
	}
	if flags.Changed("version-attribute") {
		cfg.VersionAttribute = versionAttribute
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
}

// pickSubject returns the requested document type, or the only known one.
func pickSubject(r runner) (string, error) {
	if subjectName != "" {
		return subjectName, nil
	}
	all := r.subjects()
	if len(all) == 1 {
		return all[0], nil
	}
	return "", fmt.Errorf("--type is required, known types: %s", strings.Join(all, ", "))
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	r, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	subject, err := pickSubject(r)
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, inPath)
	if err != nil {
		return err
	}
	doc, err := r.run(subject, raw, fromVersion, toVersion)
	if err != nil {
		return err
	}

	var enc []byte
	if pretty {
		enc, err = document.MarshalIndent(doc, "", "  ")
	} else {
		enc, err = document.Marshal(doc)
	}
	if err != nil {
		return err
	}

	if outPath == "-" {
		out := cmd.OutOrStdout()
		if _, err := out.Write(enc); err != nil {
			return err
		}
		_, err = io.WriteString(out, "\n")
		return err
	}
	if err := os.WriteFile(outPath, enc, 0o644); err != nil {
		return err
	}
	log.Info("wrote document", zap.String("subject", subject), zap.String("path", outPath))
	return nil
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	r, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	subjects := r.subjects()
	if subjectName != "" {
		subjects = []string{subjectName}
	}
	reports := make([]report, 0, len(subjects))
	for _, s := range subjects {
		rep, err := r.describe(s)
		if err != nil {
			return err
		}
		reports = append(reports, rep)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	r, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	subject, err := pickSubject(r)
	if err != nil {
		return err
	}
	steps, err := r.plan(subject, fromVersion, toVersion)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(steps) == 0 {
		_, err = fmt.Fprintln(out, "no steps apply")
		return err
	}
	for i, s := range steps {
		if _, err := fmt.Fprintf(out, "%d. %s\n", i+1, s); err != nil {
			return err
		}
	}
	return nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	r, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	raw, err := readInput(cmd, inPath)
	if err != nil {
		return err
	}
	if err := r.validate(raw, atVersion); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return err
}
