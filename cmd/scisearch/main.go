package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scisearch/internal/config"
	"scisearch/internal/controller"
	"scisearch/internal/domain"
	"scisearch/internal/logging"
	"scisearch/internal/searchapi"
	"scisearch/internal/tui"
)

// errReported marks failures the view has already shown to the user.
var errReported = errors.New("reported")

var (
	cfgPath     string
	endpointArg string
	logLevel    string

	cfg      *config.AppConfig
	cfgFile  string
	endpoint string
)

var rootCmd = &cobra.Command{
	Use:   "scisearch [query...]",
	Short: "Search arXiv and PubChem through the research search API",
	Long: `scisearch submits a query to the research search API and shows the retrieved
documents together with the optional executive summary, reasoning and storage
details.

Without a subcommand it opens the interactive terminal UI; any arguments
prefill the query field.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgPath == "" {
			cfg, cfgFile, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
			cfgFile = cfgPath
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		endpoint = cfg.ResolveEndpoint()
		if endpointArg != "" {
			endpoint = endpointArg
		}
		return nil
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default: ./config.yaml or ~/.config/scisearch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpointArg, "endpoint", "", "Search API endpoint (overrides API_ENDPOINT and the config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func newClient(logger *zap.Logger) *searchapi.Client {
	return searchapi.NewClient(searchapi.Config{
		Endpoint: endpoint,
		Timeout:  time.Duration(cfg.API.TimeoutSecs) * time.Second,
	}, logger)
}

func defaultForm() controller.Form {
	return controller.Form{
		Summarization: cfg.Form.Summarization,
		Reasoning:     cfg.Form.Reasoning,
		Arxiv:         cfg.Form.HasSource(string(domain.SourceArxiv)),
		Pubchem:       cfg.Form.HasSource(string(domain.SourcePubchem)),
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger, err := logging.NewForTerminal(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	form := defaultForm()
	form.Query = strings.Join(args, " ")
	m := tui.New(newClient(logger), endpoint, form, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
