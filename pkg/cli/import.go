package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mchmarny/moodctl/pkg/data"
	"github.com/mchmarny/moodctl/pkg/net"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var (
	fileFlag = &cli.StringSliceFlag{
		Name:  "file",
		Usage: "Path to a CSV corpus file (can be specified multiple times)",
	}

	textColFlag = &cli.StringFlag{
		Name:  "text-col",
		Usage: fmt.Sprintf("Name of the CSV text column (default: %s)", data.TextColumnDefault),
		Value: data.TextColumnDefault,
	}

	labelColFlag = &cli.StringFlag{
		Name:  "label-col",
		Usage: fmt.Sprintf("Name of the CSV label column (default: %s)", data.LabelColumnDefault),
		Value: data.LabelColumnDefault,
	}

	orgNameFlag = &cli.StringFlag{
		Name:  "org",
		Usage: "Name of the GitHub organization or user",
	}

	repoNameFlag = &cli.StringFlag{
		Name:  "repo",
		Usage: "Name of the GitHub repository",
	}

	labelPrefixFlag = &cli.StringFlag{
		Name:  "label-prefix",
		Usage: fmt.Sprintf("GitHub issue label prefix that carries the emotion (default: %s)", data.LabelPrefixDefault),
		Value: data.LabelPrefixDefault,
	}

	pagesFlag = &cli.IntFlag{
		Name:  "pages",
		Usage: "Max number of GitHub issue pages to import",
	}

	importCmd = &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import labeled text into the local corpus (CSV files or GitHub issues)",
		UsageText: `moodctl import --file tweets.csv                                 # import a CSV corpus
   moodctl import --file a.csv --file b.csv --label-col emotion     # import multiple files
   moodctl import --org acme --repo support --label-prefix mood/    # import labeled GitHub issues`,
		Action: cmdImport,
		Flags: []cli.Flag{
			fileFlag,
			textColFlag,
			labelColFlag,
			orgNameFlag,
			repoNameFlag,
			labelPrefixFlag,
			pagesFlag,
		},
	}
)

type ImportResult struct {
	Files     []*data.CSVResult   `json:"files,omitempty" yaml:"files,omitempty"`
	GitHub    *data.ImportSummary `json:"github,omitempty" yaml:"github,omitempty"`
	Documents int64               `json:"documents" yaml:"documents"`
	Labels    []*data.LabelCount  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Duration  string              `json:"duration" yaml:"duration"`
}

func cmdImport(c *cli.Context) error {
	start := time.Now()
	files := c.StringSlice(fileFlag.Name)
	org := c.String(orgNameFlag.Name)
	repo := c.String(repoNameFlag.Name)

	if len(files) == 0 && org == "" {
		return cli.ShowSubcommandHelp(c)
	}

	cfg := getConfig(c)
	res := &ImportResult{}

	if len(files) > 0 {
		if err := importFiles(c, cfg, res, files); err != nil {
			return err
		}
	}

	if org != "" {
		if repo == "" {
			return fmt.Errorf("--repo is required with --org")
		}
		if err := importIssues(c, cfg, res, org, repo); err != nil {
			return err
		}
	}

	labels, err := data.GetLabelCounts(cfg.DB)
	if err != nil {
		return fmt.Errorf("getting label counts: %w", err)
	}
	res.Labels = labels
	res.Duration = time.Since(start).String()

	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

// importFiles parses CSV files concurrently, then saves the parsed
// documents in one batch per file (sqlite wants a single writer).
func importFiles(c *cli.Context, cfg *appConfig, res *ImportResult, files []string) error {
	textCol := c.String(textColFlag.Name)
	labelCol := c.String(labelColFlag.Name)

	var mu sync.Mutex
	parsed := make(map[string][]*data.Document, len(files))

	g := new(errgroup.Group)
	for _, file := range files {
		g.Go(func() error {
			slog.Info("parsing corpus file", "file", file)
			docs, fileRes, err := data.ReadCSVDocuments(file, textCol, labelCol)
			if err != nil {
				return err
			}
			mu.Lock()
			parsed[file] = docs
			res.Files = append(res.Files, fileRes)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parsing corpus files: %w", err)
	}

	for _, file := range files {
		n, err := data.SaveDocuments(cfg.DB, parsed[file])
		if err != nil {
			return fmt.Errorf("saving documents from %s: %w", file, err)
		}
		res.Documents += n
	}
	return nil
}

func importIssues(c *cli.Context, cfg *appConfig, res *ImportResult, org, repo string) error {
	token, err := getGitHubToken()
	if err != nil {
		return fmt.Errorf("getting GitHub token (run auth first): %w", err)
	}

	ctx := context.Background()
	client := net.GetOAuthClient(ctx, token)

	slog.Info("importing issues", "org", org, "repo", repo)
	summary, err := data.ImportIssueDocuments(ctx, cfg.DB, client,
		org, repo, c.String(labelPrefixFlag.Name), c.Int(pagesFlag.Name))
	if err != nil {
		return fmt.Errorf("importing issues from %s/%s: %w", org, repo, err)
	}

	res.GitHub = summary
	res.Documents += summary.Documents
	return nil
}
