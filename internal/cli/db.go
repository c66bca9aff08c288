package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/maloquacious/datacycle/internal/config"
	"github.com/maloquacious/datacycle/internal/store"
	"github.com/maloquacious/datacycle/internal/store/sqlstore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create tbl_test and record the schema version",
		Args:  cobra.NoArgs,
		RunE:  runDBCreate,
	}
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema state and version",
		Args:  cobra.NoArgs,
		RunE:  runDBVerify,
	}

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed [data...]",
		Short: "Insert rows into tbl_test out of band",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, args, seedFile)
		},
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file with a records list")

	cmd.AddCommand(createCmd, verifyCmd, seedCmd)
	return cmd
}

// runDBCreate bootstraps the schema. Unlike serve, a failure here is fatal.
func runDBCreate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Bootstrap(cmd.Context()); err != nil {
		return fmt.Errorf("db create: %w", err)
	}
	log.Info("schema version %s ready", sqlstore.CurrentSchemaVersion)
	outln(cmd.OutOrStdout(), "created")
	return nil
}

type verifyReport struct {
	Driver         string `json:"driver"`
	State          string `json:"state"`
	SchemaVersion  string `json:"schemaVersion,omitempty"`
	ExpectedSchema string `json:"expectedSchema"`
	Error          string `json:"error,omitempty"`
}

// runDBVerify prints a JSON summary of the store state. It fails unless the
// store is ready.
func runDBVerify(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report := verifyReport{
		Driver:         cfg.Database.Driver,
		ExpectedSchema: sqlstore.CurrentSchemaVersion,
	}
	state, version, err := checkStore(cmd.Context(), cfg)
	report.State = state.String()
	report.SchemaVersion = version
	if err != nil {
		report.Error = err.Error()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if state != store.StateReady {
		return fmt.Errorf("store is %s", state)
	}
	return nil
}

// checkStore reports the store state without creating anything. A missing
// sqlite file is reported as missing rather than silently created.
func checkStore(ctx context.Context, cfg *config.Config) (store.StoreState, string, error) {
	if cfg.Database.Driver == sqlstore.SQLite.Name {
		ok, err := store.FileExists(cfg.SQLite.Path)
		if err != nil || !ok {
			return store.StateMissing, "", err
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return store.StateMissing, "", err
	}
	defer st.Close()

	if err := st.Ping(ctx); err != nil {
		return store.StateMissing, "", err
	}
	state, err := st.CheckState(ctx)
	if err != nil || state == store.StateUninitialized {
		return state, "", err
	}
	version, err := st.GetSchemaVersion(ctx)
	return state, version, err
}

// seedFile is the YAML layout accepted by db seed. Ids are ignored.
type seedFile struct {
	Records []store.Record `yaml:"records"`
}

func loadSeedFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	data := make([]string, 0, len(sf.Records))
	for _, r := range sf.Records {
		data = append(data, r.Data)
	}
	return data, nil
}

// runDBSeed bootstraps the schema if needed and inserts rows. Every value is
// validated before the first insert.
func runDBSeed(cmd *cobra.Command, args []string, path string) error {
	data := append([]string(nil), args...)
	if path != "" {
		fromFile, err := loadSeedFile(path)
		if err != nil {
			return err
		}
		data = append(data, fromFile...)
	}
	if len(data) == 0 {
		return errors.New("nothing to seed: pass data arguments or --file")
	}
	for i, d := range data {
		if err := store.ValidateData(d); err != nil {
			return fmt.Errorf("seed value %d: %w", i+1, err)
		}
	}

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.Bootstrap(ctx); err != nil {
		return fmt.Errorf("db seed: %w", err)
	}
	for _, d := range data {
		r, err := st.InsertRecord(ctx, d)
		if err != nil {
			return fmt.Errorf("db seed: %w", err)
		}
		log.Debug("inserted record %d", r.ID)
	}
	outln(cmd.OutOrStdout(), fmt.Sprintf("seeded %d records", len(data)))
	return nil
}
