package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cowspump/some-diploma-stuff/client"
)

const commandTimeout = 30 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app carries the resolved settings of one invocation. Every key can come
// from a flag, a WELLBEING_* variable or the config file, in that order.
type app struct {
	v *viper.Viper
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "wellbeingctl",
		Short:         "Command line client for the well-being service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if err := a.readConfig(); err != nil {
				return err
			}
			if a.v.GetBool("debug") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Str("config", a.v.ConfigFileUsed()).Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/wellbeing/config.yaml)")
	pf.String("base-url", client.DefaultBaseURL, "Base URL of the well-being service")
	pf.String("session-file", "", "Session file (default $WELLBEING_SESSION_FILE or the user config dir)")
	pf.String("login-transport", string(client.LoginForm), "Login transport: form or json")
	pf.Int("max-attempts", 3, "Attempts per request, including the first")
	pf.Duration("attempt-timeout", 10*time.Second, "Timeout of a single attempt")
	pf.StringP("output", "o", "text", "Output format: text or json")
	pf.BoolP("debug", "d", false, "Enable verbose debug output")

	a.v.SetEnvPrefix("WELLBEING")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(pf)

	rootCmd.AddCommand(a.newLoginCmd())
	rootCmd.AddCommand(a.newRegisterCmd())
	rootCmd.AddCommand(a.newLogoutCmd())
	rootCmd.AddCommand(a.newWhoamiCmd())
	rootCmd.AddCommand(a.newRefreshCmd())
	rootCmd.AddCommand(a.newJournalCmd())
	rootCmd.AddCommand(a.newTestCmd())
	rootCmd.AddCommand(a.newAskCmd())
	rootCmd.AddCommand(a.newInsightsCmd())

	return rootCmd
}

// readConfig loads an explicit --config file, or the default one when it
// exists.
func (a *app) readConfig() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	a.v.SetConfigName("config")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(filepath.Join(dir, "wellbeing"))
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) sessionPath() (string, error) {
	if p := a.v.GetString("session-file"); p != "" {
		return p, nil
	}
	return client.DefaultSessionPath()
}

// newClient restores the saved session and builds an SDK client on it.
func (a *app) newClient(ctx context.Context) (*client.Client, error) {
	path, err := a.sessionPath()
	if err != nil {
		return nil, err
	}
	session := client.NewSession(client.NewFileTokenStore(path))
	if err := session.Init(ctx); err != nil {
		log.Warn().Err(err).Str("session_file", path).Msg("ignoring unreadable session")
	}
	log.Debug().
		Str("base_url", a.v.GetString("base-url")).
		Str("session_file", path).
		Bool("authenticated", session.Authenticated()).
		Msg("building client")

	return client.New(a.v.GetString("base-url"),
		client.WithSession(session),
		client.WithLoginTransport(client.LoginTransport(a.v.GetString("login-transport"))),
		client.WithMaxAttempts(a.v.GetInt("max-attempts")),
		client.WithAttemptTimeout(a.v.GetDuration("attempt-timeout")),
		client.WithDebugLogging(a.v.GetBool("debug")),
	)
}

// run builds a client, bounds the call by commandTimeout and logs the
// outcome with its latency.
func (a *app) run(cmd *cobra.Command, op string, fn func(ctx context.Context, c *client.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	c, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	start := time.Now()
	err = fn(ctx, c)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().
			Err(err).
			Str("op", op).
			Int("status", client.StatusCode(err)).
			Dur("elapsed", elapsed).
			Msg("request failed")
		return err
	}
	log.Debug().Str("op", op).Dur("elapsed", elapsed).Msg("request completed")
	return nil
}

// emit writes v as indented JSON with --output json, otherwise calls text.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch a.v.GetString("output") {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", a.v.GetString("output"))
	}
}

func message(m *client.MessageResponse) string {
	if m == nil || m.Message == "" {
		return "ok"
	}
	return m.Message
}
