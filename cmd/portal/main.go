package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskportal/internal/apiclient"
	"taskportal/internal/model"
	"taskportal/internal/portal"
	"taskportal/pkg/config"
	"taskportal/pkg/logger"
)

var Version = "dev"

type app struct {
	cfg *config.Config
	log *zap.Logger

	apiURL   string
	email    string
	password string
	role     string
	logLevel string
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "portal",
		Short:         "Task portal - manage employees and tasks from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "Portal API base URL (default from config)")
	flags.StringVarP(&a.email, "email", "e", os.Getenv("PORTAL_EMAIL"), "Login email")
	flags.StringVarP(&a.password, "password", "p", "", "Login password (default $PORTAL_PASSWORD)")
	flags.StringVar(&a.role, "role", "", "Login as role (employee, admin); defaults to what the command needs")
	flags.StringVar(&a.logLevel, "log-level", "error", "Log level")

	rootCmd.AddCommand(employeesCmd(a))
	rootCmd.AddCommand(tasksCmd(a))
	rootCmd.AddCommand(activityCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.Load(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
	if errors.Is(err, fs.ErrNotExist) {
		// 没有配置目录时只用默认值和环境变量
		def := config.Default()
		config.OverrideAPIFromEnv(&def.API)
		cfg, err = &def, nil
	}
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.apiURL == "" {
		a.apiURL = cfg.API.BaseURL
	}
	if a.password == "" {
		a.password = os.Getenv("PORTAL_PASSWORD")
	}
	a.log = logger.NewLogger(a.logLevel)
	return nil
}

// login authenticates against the API and checks the session may reach a
// view restricted to need.
func (a *app) login(ctx context.Context, need string) (*portal.Portal, error) {
	if a.email == "" || a.password == "" {
		return nil, fmt.Errorf("--email and --password (or $PORTAL_PASSWORD) are required")
	}
	role := a.role
	if role == "" {
		role = need
	}

	p := portal.New(apiclient.New(a.apiURL, a.cfg.API.Timeout, a.log), a.log)
	if _, err := p.Login(ctx, model.Credentials{
		Email:        a.email,
		Password:     a.password,
		ExpectedRole: role,
	}); err != nil {
		return nil, err
	}
	if ok, home := p.Session.Route(need); !ok {
		return nil, fmt.Errorf("this command needs the %s role; your home view is %s", need, home)
	}
	return p, nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
