package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"advisor-chat/internal/config"
	"advisor-chat/internal/integrations/advisorapi"
	"advisor-chat/internal/integrations/paramstore"
	"advisor-chat/internal/logging"
	"advisor-chat/internal/tui"
	"advisor-chat/internal/usecase"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile  string
	baseURL     string
	paramPrefix string
	timeout     time.Duration
	logFile     string
	theme       string
	verbose     bool
}

// newParamLoader builds the SSM-backed settings loader. Tests replace it.
var newParamLoader = func(ctx context.Context) (paramstore.Loader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// runProgram runs the interactive UI. Tests replace it.
var runProgram = func(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}

func newRootCmd() *cobra.Command {
	var f globalFlags

	root := &cobra.Command{
		Use:   "advisor-chat",
		Short: "Terminal client for the AI Financial Advisor",
		Long: `advisor-chat talks to an AI Financial Advisor backend over HTTP.

Run without arguments to start the interactive chat. Use "ask" for a single
question and "upload" to add a .docx document to your personal knowledge base.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, &f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/advisor-chat/config.yaml)")
	pf.StringVar(&f.baseURL, "base-url", "", "advisor backend URL (default "+config.DefaultBaseURL+")")
	pf.StringVar(&f.paramPrefix, "param-prefix", "", "SSM parameter path to read settings from")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (default "+config.DefaultTimeout.String()+")")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&f.theme, "theme", "", `colour theme, "dark" or "light"`)
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAskCmd(&f), newUploadCmd(&f))
	return root
}

// resolveConfig loads the configuration and applies flags the user set.
func resolveConfig(cmd *cobra.Command, f *globalFlags) (config.Config, error) {
	cfg, err := config.Load(cmd.Context(), config.Options{
		File:        f.configFile,
		ParamPrefix: f.paramPrefix,
		NewLoader:   newParamLoader,
	})
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if flags.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if flags.Changed("theme") {
		cfg.Theme = f.theme
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// session is what every command needs to talk to the advisor.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	conv   *usecase.Conversation
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// newSession wires config, logging, the API client and the conversation.
// Interactive sessions always log to a file.
func newSession(cmd *cobra.Command, f *globalFlags, interactive bool) (*session, error) {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{File: cfg.LogFile, Verbose: f.verbose, Quiet: !interactive}
	if interactive && logOpts.File == "" {
		logOpts.File = config.DefaultLogFile()
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	client, err := advisorapi.NewClient(cfg.BaseURL,
		advisorapi.WithTimeout(cfg.Timeout),
		advisorapi.WithLogger(logger.Named("advisorapi")),
	)
	if err != nil {
		return nil, err
	}
	conv, err := usecase.NewConversation(client, logger.Named("conversation"))
	if err != nil {
		return nil, err
	}

	logger.Debug("session ready",
		zap.String("base_url", client.BaseURL()),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("interactive", interactive),
	)
	return &session{cfg: cfg, logger: logger, conv: conv}, nil
}

func runChat(cmd *cobra.Command, f *globalFlags) error {
	s, err := newSession(cmd, f, true)
	if err != nil {
		return err
	}
	defer s.close()

	m, err := tui.New(s.conv, tui.Options{
		Context: cmd.Context(),
		Logger:  s.logger.Named("tui"),
		Theme:   s.cfg.Theme,
	})
	if err != nil {
		return err
	}
	if err := runProgram(cmd.Context(), m); err != nil {
		s.logger.Error("ui exited with error", zap.Error(err))
		return err
	}
	return nil
}
