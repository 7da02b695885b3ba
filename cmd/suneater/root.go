package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/config"
	"github.com/grant/suneater/github"
	"github.com/grant/suneater/logging"
	"github.com/grant/suneater/provider"
	"github.com/grant/suneater/ui"
)

var (
	cfgFile   string
	appConfig config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "suneater",
	Short: "Browse the suneater portfolio in the terminal",
	Long: `suneater renders the portfolio page in the terminal: hero, about and
five content categories whose items are listed live from the branches of
a GitHub repository, with built-in items when the repository is unreachable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initialize(cmd)
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
	RunE: runBrowser,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $XDG_CONFIG_HOME/suneater/config.yaml)")
	fs.String("owner", "", "GitHub owner of the content repository")
	fs.String("repo", "", "content repository; one branch per category")
	fs.Duration("timeout", 0, "timeout of each branch listing request")
	fs.BoolP("verbose", "v", false, "log at debug level")
	fs.String("log-file", "", "log file (default is $XDG_STATE_HOME/suneater/suneater.log)")
	fs.Duration("handoff-delay", 0, "wait before scrolling to a section after leaving an archive")

	rootCmd.AddCommand(listCmd)
}

func initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{File: cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	appConfig = cfg

	file := cfg.Log.File
	if file == "" {
		file = logging.DefaultFile()
	}
	l, err := logging.New(logging.Options{Verbose: cfg.Log.Verbose, File: file})
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("configuration loaded",
		zap.String("config_file", cfg.File),
		zap.String("owner", cfg.GitHub.Owner),
		zap.String("repo", cfg.GitHub.Repo),
		zap.Bool("remote", cfg.RemoteEnabled()))
	return nil
}

// newSource builds the GitHub listing client. Memoize is for long-lived
// processes that serve many requests.
func newSource(cfg config.Config, memoize bool) *github.Client {
	return github.New(github.Options{
		Owner:   cfg.GitHub.Owner,
		Repo:    cfg.GitHub.Repo,
		APIBase: cfg.GitHub.APIBase,
		WebBase: cfg.GitHub.WebBase,
		Timeout: cfg.GitHub.Timeout,
		Memoize: memoize,
	})
}

func runBrowser(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	providers := provider.ForCategories(cat.Categories(), newSource(appConfig, false), logger)
	group := provider.NewGroup(provider.Members(cat.Categories(), providers)...)
	defer group.Close()

	model := ui.NewModel(ui.Options{
		Context:      ctx,
		Catalog:      cat,
		Providers:    providers,
		Threshold:    appConfig.Nav.Threshold,
		HandoffDelay: appConfig.Nav.HandoffDelay,
		Logger:       logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
