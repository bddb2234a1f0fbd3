package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/curation/triggers"
	"github.com/BaSui01/memcurator/internal/tlsutil"
	"github.com/BaSui01/memcurator/internal/tokenizer"
	"github.com/BaSui01/memcurator/store"
	"github.com/BaSui01/memcurator/types"
)

// =============================================================================
// 🧠 curate 命令
// =============================================================================

func newCurateCommand(a *app) *cobra.Command {
	var (
		input   string
		filters string
		format  string
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Curate a transcript JSON array into a memory document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "markdown" && format != "json" {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			if err := a.load(true); err != nil {
				return err
			}
			defer a.sync()

			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			msgs, err := types.DecodeTranscript(data)
			if err != nil {
				return err
			}

			path := filters
			if path == "" {
				path = a.cfg.Filter.ConfigPath
			}
			filterCfg := config.DefaultFilterConfig()
			if path != "" {
				filterCfg = config.LoadFilterConfig(path, a.logger)
			}

			curator := curation.NewCurator(
				curation.WithLogger(a.logger),
				curation.WithFilterConfig(filterCfg),
				curation.WithTriggerLimits(a.cfg.Triggers.MinPhrases, a.cfg.Triggers.MaxPhrases),
				curation.WithTokenCounter(tokenizer.ForModel(a.cfg.Tokenizer.Model, a.logger)),
			)
			doc, err := curator.Curate(cmd.Context(), msgs)
			if err != nil {
				return err
			}
			if doc.LowQuality {
				a.logger.Warn("low quality transcript",
					zap.String("document_id", doc.ID),
					zap.Int("quality_score", doc.QualityScore))
			}

			if save {
				if err := saveDocument(cmd, a, doc); err != nil {
					return err
				}
			}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "transcript JSON file, - for stdin")
	cmd.Flags().StringVar(&filters, "filters", "", "filters.jsonc path (overrides filter.config_path)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().BoolVar(&save, "save", false, "persist the document to the configured database")
	return cmd
}

func saveDocument(cmd *cobra.Command, a *app, doc *curation.Document) error {
	if a.cfg.Database.Driver == "" {
		return fmt.Errorf("--save requires database.driver to be configured")
	}
	st, err := store.Open(a.cfg.Database, a.logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(cmd.Context(), doc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved document %s\n", doc.ID)
	return nil
}

func writeDocument(w io.Writer, doc *curation.Document, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	_, err := io.WriteString(w, doc.Markdown)
	return err
}

// =============================================================================
// 🔑 triggers 命令
// =============================================================================

func newTriggersCommand(a *app) *cobra.Command {
	var (
		input     string
		withStats bool
	)
	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Extract retrieval trigger phrases from text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.sync()

			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			extractor := triggers.New(
				triggers.WithLimits(a.cfg.Triggers.MinPhrases, a.cfg.Triggers.MaxPhrases),
				triggers.WithTokenCounter(tokenizer.ForModel(a.cfg.Tokenizer.Model, a.logger)),
				triggers.WithLogger(a.logger),
			)
			res := extractor.ExtractWithStats(string(data))

			out := cmd.OutOrStdout()
			if withStats {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Phrases []string       `json:"phrases"`
					Stats   triggers.Stats `json:"stats"`
				}{res.Phrases, res.Stats})
			}
			if res.Stats.Rejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "no trigger phrases: %s\n", res.Stats.RejectReason)
				return nil
			}
			for _, p := range res.Phrases {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "text file, - for stdin")
	cmd.Flags().BoolVar(&withStats, "stats", false, "print phrases and extraction stats as JSON")
	return cmd
}

// =============================================================================
// ⚓ anchor 命令
// =============================================================================

func newAnchorCommand(a *app) *cobra.Command {
	var (
		title      string
		category   string
		specNumber string
		existing   []string
	)
	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Generate a unique anchor ID for a section title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title is required")
			}
			if err := a.load(true); err != nil {
				return err
			}
			defer a.sync()

			if category == "" {
				category = a.cfg.Anchor.DefaultCategory
			}
			var opts []anchor.GenerateOption
			if specNumber != "" {
				opts = append(opts, anchor.WithSpecNumber(specNumber))
			}
			id := anchor.NewGenerator(time.Now).Generate(title, category, opts...)
			id = anchor.ValidateAnchorUniqueness(id, existing)
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "section title")
	cmd.Flags().StringVarP(&category, "category", "c", "", "anchor category (default from config)")
	cmd.Flags().StringVar(&specNumber, "spec-number", "", "optional spec number mixed into the hash")
	cmd.Flags().StringSliceVar(&existing, "existing", nil, "anchor IDs already used in the document")
	return cmd
}

// =============================================================================
// 🏥 health 命令
// =============================================================================

func newHealthCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running server's health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := tlsutil.SecureHTTPClient(5 * time.Second)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(addr, "/")+"/health", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("health check failed: status %d", resp.StatusCode)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "server address")
	return cmd
}
