package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/medportal/internal/client/api"
	"github.com/iudanet/medportal/internal/client/auth"
	"github.com/iudanet/medportal/internal/client/iocli"
	"github.com/iudanet/medportal/internal/client/onboarding"
	"github.com/iudanet/medportal/internal/client/session"
	"github.com/iudanet/medportal/internal/client/storage/boltdb"
)

const (
	defaultServer = "http://localhost:8080"
	defaultDB     = "medportal-client.db"
	envPrefix     = "MEDPORTAL"
)

// BuildInfo — информация о сборке, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// App связывает cobra-команды с сервисами клиента.
// Хранилище открывается перед выполнением команды и закрывается в Close.
type App struct {
	io    iocli.IO
	v     *viper.Viper
	store *boltdb.Storage
	cli   *Cli
	build BuildInfo
}

// NewApp создает приложение
func NewApp(build BuildInfo, io iocli.IO) *App {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("server", defaultServer)
	v.SetDefault("db", defaultDB)

	return &App{io: io, v: v, build: build}
}

// Close закрывает локальную базу
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// setup открывает базу и собирает сервисы
func (a *App) setup(cmd *cobra.Command) error {
	if a.cli != nil {
		return nil
	}

	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := boltdb.New(cmd.Context(), a.v.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store

	client := api.NewClient(a.v.GetString("server"),
		api.WithTokenStore(store),
		api.WithNavigator(Navigator(a.io)),
		api.WithLogger(logger),
	)
	sess := session.New(client, logger)
	status := onboarding.NewStatus(store, logger)
	authService := auth.NewService(client, store, store, sess, logger)

	a.cli = New(a.io, authService, client, sess, status)
	return nil
}

// Command строит дерево команд
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "medportal",
		Short:         "Healthcare portal command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	root.SetOut(a.io)

	flags := root.PersistentFlags()
	flags.String("server", defaultServer, "Portal API URL (env MEDPORTAL_SERVER)")
	flags.String("db", defaultDB, "Path to local database (env MEDPORTAL_DB)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	for _, name := range []string{"server", "db", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.verifyCmd(),
		a.statusCmd(),
		a.profileCmd(),
		a.onboardingCmd(),
		a.logoutCmd(),
		a.videoURLCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *App) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runRegister(cmd.Context())
		},
	}
}

func (a *App) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runLogin(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

func (a *App) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [code]",
		Short: "Finish signing in with the emailed verification code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) == 1 {
				code = args[0]
			}
			return a.cli.runVerify(cmd.Context(), code)
		},
	}
}

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runStatus(cmd.Context())
		},
	}
}

func (a *App) profileCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runProfile(cmd.Context(), refresh)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the profile from the server instead of the access token")
	return cmd
}

func (a *App) onboardingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show or complete onboarding",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether onboarding is completed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.cli.runOnboardingStatus(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "complete",
			Short: "Mark onboarding as completed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.cli.runOnboardingComplete(cmd.Context())
			},
		},
	)
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runLogout(cmd.Context())
		},
	}
}

func (a *App) videoURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "video-url",
		Short: "Request a direct-upload URL for a video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.runVideoURL(cmd.Context())
		},
	}
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			a.io.Printf("medportal client\n")
			a.io.Printf("Version:    %s\n", a.build.Version)
			a.io.Printf("Build Date: %s\n", a.build.BuildDate)
			a.io.Printf("Git Commit: %s\n", a.build.GitCommit)
		},
	}
}
