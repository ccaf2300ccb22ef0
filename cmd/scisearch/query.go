package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"scisearch/internal/controller"
	"scisearch/internal/domain"
	"scisearch/internal/logging"
	"scisearch/internal/render"
	"scisearch/internal/tui"
)

var queryCmd = &cobra.Command{
	Use:   "query <text...>",
	Short: "Run a single search and print the results",
	Long: `query submits one search and prints the rendered documents, summary,
reasoning and storage sections. With --json the decoded API response is
printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSlice("source", nil, "sources to search: arxiv, pubchem (default from config)")
	queryCmd.Flags().Bool("summarize", false, "request an executive summary (default from config)")
	queryCmd.Flags().Bool("reasoning", false, "request reasoning analysis (default from config)")
	queryCmd.Flags().Bool("json", false, "print the API response as JSON")
	queryCmd.Flags().Int("width", 100, "wrap width for text output")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	form := defaultForm()
	form.Query = strings.Join(args, " ")
	if cmd.Flags().Changed("source") {
		sources, _ := cmd.Flags().GetStringSlice("source")
		form.Arxiv, form.Pubchem = false, false
		for _, s := range sources {
			switch domain.Source(strings.ToLower(strings.TrimSpace(s))) {
			case domain.SourceArxiv:
				form.Arxiv = true
			case domain.SourcePubchem:
				form.Pubchem = true
			default:
				return fmt.Errorf("unknown source %q", s)
			}
		}
	}
	if cmd.Flags().Changed("summarize") {
		form.Summarization, _ = cmd.Flags().GetBool("summarize")
	}
	if cmd.Flags().Changed("reasoning") {
		form.Reasoning, _ = cmd.Flags().GetBool("reasoning")
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	width, _ := cmd.Flags().GetInt("width")

	rec := &recordingSearcher{next: newClient(logger)}
	view := &printView{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), query: form.Query, width: width, quiet: asJSON}
	ctrl := controller.New(rec, view, endpoint, logger)
	if _, err := ctrl.Submit(cmd.Context(), form); err != nil {
		return errReported
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec.last)
	}
	return nil
}

// recordingSearcher keeps the last response for --json output.
type recordingSearcher struct {
	next domain.Searcher
	last *domain.SearchResponse
}

func (r *recordingSearcher) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	resp, err := r.next.Search(ctx, req)
	r.last = resp
	return resp, err
}

// printView writes status to errOut and results to out.
type printView struct {
	out    io.Writer
	errOut io.Writer
	query  string
	width  int
	quiet  bool
}

func (v *printView) ShowEndpoint(url string) {
	if !v.quiet {
		fmt.Fprintln(v.errOut, "API endpoint:", url)
	}
}

func (v *printView) HideResults()            {}
func (v *printView) HideError()              {}
func (v *printView) SetLoading(bool)         {}
func (v *printView) SetTrigger(bool, string) {}
func (v *printView) ShowError(msg string)    { fmt.Fprintln(v.errOut, msg) }

func (v *printView) SetStep(label string) {
	if !v.quiet {
		fmt.Fprintln(v.errOut, label)
	}
}

func (v *printView) ShowResults(r render.Results) {
	if v.quiet {
		return
	}
	fmt.Fprintln(v.out, tui.RenderResults(r, v.query, v.width))
}
