// Package cli implements the bay command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/bayfiles/bay_sdk_go/internal/config"
	"github.com/bayfiles/bay_sdk_go/internal/logging"
	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile  string
	apiURL   string
	logLevel string

	cfgPath string
	// fileCfg is the configuration as stored on disk; cfg adds the
	// environment and flag overrides of this invocation.
	fileCfg *config.Config
	cfg     *config.Config
	logger  *zap.Logger
	client  *bay.Client

	in     io.Reader
	out    io.Writer
	prompt func(label string) (string, error)
}

// Execute runs the bay command with os.Args.
func Execute() error {
	return newRootCmd(newApp(os.Stdin, os.Stdout)).Execute()
}

func newApp(in io.Reader, out io.Writer) *app {
	a := &app{in: in, out: out}
	a.prompt = a.promptPassword
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bay",
		Short:         "Bayfiles command line client",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/bay/config.yaml)")
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL (overrides config and BAY_API_URL)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newInfoCmd(a),
		newFilesCmd(a),
		newFileInfoCmd(a),
		newDeleteCmd(a),
		newUploadCmd(a),
		newUploadURLCmd(a),
		newEditCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	a.cfgPath = a.cfgFile
	if a.cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		a.cfgPath = p
	}
	fileCfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.fileCfg = fileCfg
	cfg := *fileCfg
	cfg.ApplyEnv()
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = &cfg

	a.logger, err = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.client, err = bay.New(cfg.APIURL, bay.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.logger.Debug("bay client ready", zap.String("api_url", cfg.APIURL), zap.String("config", a.cfgPath))
	return nil
}

// account returns the configured account, reusing the stored session. The
// password is only prompted for when there is no session to reuse.
func (a *app) account() (*bay.Account, error) {
	if a.cfg.Username == "" {
		return nil, errors.New("no username configured: run 'bay login <username>' or set BAY_USERNAME")
	}
	if a.cfg.Session != "" {
		return a.client.NewAccount(a.cfg.Username, a.cfg.Password, bay.WithSession(a.cfg.Session)), nil
	}
	password, err := a.password()
	if err != nil {
		return nil, err
	}
	return a.client.NewAccount(a.cfg.Username, password), nil
}

func (a *app) password() (string, error) {
	if a.cfg.Password != "" {
		return a.cfg.Password, nil
	}
	p, err := a.prompt(fmt.Sprintf("Password for %s", a.cfg.Username))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if p == "" {
		return "", errors.New("password cannot be empty")
	}
	return p, nil
}

// remember stores the account username and session in the config file.
// Overrides from flags and the environment are not persisted.
func (a *app) remember(ctx context.Context, acc *bay.Account) error {
	token, err := acc.Session(ctx)
	if err != nil {
		return err
	}
	a.cfg.Username = acc.Username()
	a.cfg.Session = token
	a.fileCfg.Username = acc.Username()
	a.fileCfg.Session = token
	return config.Save(a.cfgPath, a.fileCfg)
}

// forget drops the stored session from the config file.
func (a *app) forget() error {
	a.cfg.Session = ""
	a.fileCfg.Session = ""
	return config.Save(a.cfgPath, a.fileCfg)
}

func (a *app) promptPassword(label string) (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(os.Stderr, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
