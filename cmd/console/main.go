package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/starack/admin-console/apiclient"
	"github.com/starack/admin-console/auth"
	"github.com/starack/admin-console/chat"
	"github.com/starack/admin-console/internal/config"
	"github.com/starack/admin-console/projects"
	"github.com/starack/admin-console/routes"
	"github.com/starack/admin-console/session"
	"github.com/starack/admin-console/tasks"
	"github.com/starack/admin-console/token/filerepo"
	"github.com/starack/admin-console/users"
)

const pageSize = 10

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("console exited with error")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	app, err := newApp(c, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.runOnce(ctx)
}

// app wires the session guard, the per-service clients and the router.
type app struct {
	config    config.Config
	logger    zerolog.Logger
	session   *session.Guard
	auth      *auth.Service
	router    *routes.Router
	navigator *printNavigator
	users     *users.Client
	projects  *projects.Client
	tasks     *tasks.Client
	chat      *chat.Client
}

func newApp(c config.Config, logger zerolog.Logger) (*app, error) {
	tokens := filerepo.New(c.GetTokenFile())
	sessionGuard := session.NewGuard(tokens, session.WithLogger(logger))
	navigator := &printNavigator{logger: logger}

	// A forced logout must be visible to route guards immediately, and the
	// browser-redirect side effect becomes a navigation to the login route.
	forcedLogout := func() {
		sessionGuard.ClearUser()
		navigator.Navigate(routes.RouteAuth)
	}

	newClient := func(baseURL string) *apiclient.Client {
		return apiclient.New(baseURL, c.GetUserServiceURL(), tokens,
			apiclient.WithLogger(logger),
			apiclient.WithForcedLogoutHandler(forcedLogout),
		)
	}

	userAPI := newClient(c.GetUserServiceURL())
	projectAPI := newClient(c.GetProjectServiceURL())
	taskAPI := newClient(c.GetTaskServiceURL())
	chatAPI := newClient(c.GetChatServiceURL())

	authService, err := auth.NewService(userAPI, tokens, sessionGuard, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	router, err := routes.NewRouter(routes.DefaultRules(), sessionGuard, tokens)
	if err != nil {
		return nil, err
	}

	return &app{
		config:    c,
		logger:    logger,
		session:   sessionGuard,
		auth:      authService,
		router:    router,
		navigator: navigator,
		users:     users.NewClient(userAPI),
		projects:  projects.NewClient(projectAPI),
		tasks:     tasks.NewClient(taskAPI),
		chat:      chat.NewClient(chatAPI),
	}, nil
}

// runOnce performs the console's startup sequence: restore the session from
// the persisted tokens, log in if needed, then land on the role's default
// route and render it.
func (a *app) runOnce(ctx context.Context) error {
	a.session.Initialize()

	if a.session.User() == nil {
		email := config.GetEnv("CONSOLE_EMAIL", "")
		password := config.GetEnv("CONSOLE_PASSWORD", "")
		if email == "" {
			a.navigator.Navigate(routes.RouteAuth)
			return errors.New("not logged in: set CONSOLE_EMAIL and CONSOLE_PASSWORD")
		}
		claims, err := a.auth.Login(ctx, auth.Credentials{Email: email, Password: password})
		if err != nil {
			return err
		}
		a.logger.Info().Str("fullname", claims.Fullname).Msg("welcome")
	}

	resolution := a.router.Resolve(routes.RouteRoot)
	if resolution.RedirectTo == "" || resolution.RedirectTo == routes.RouteAuth {
		return errors.New("no landing route for current session")
	}
	a.navigator.Navigate(resolution.RedirectTo)
	return a.render(ctx, resolution.RedirectTo)
}

func (a *app) render(ctx context.Context, path string) error {
	switch path {
	case routes.RouteOverview:
		return a.renderOverview(ctx)
	case routes.RouteUserTask:
		return a.renderUserTasks(ctx)
	default:
		return fmt.Errorf("no view for %s", path)
	}
}

func (a *app) renderOverview(ctx context.Context) error {
	userCount, err := a.users.Count(ctx)
	if err != nil {
		return err
	}
	projectCount, err := a.projects.Count(ctx)
	if err != nil {
		return err
	}
	taskCount, err := a.tasks.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Overview\n  users: %d\n  projects: %d\n  tasks: %d\n", userCount, projectCount, taskCount)
	return nil
}

func (a *app) renderUserTasks(ctx context.Context) error {
	result, err := a.tasks.List(ctx, tasks.ListParams{
		Skip:  apiclient.Skip(1, pageSize),
		Limit: pageSize,
	})
	if err != nil {
		return err
	}
	fmt.Printf("My Tasks (%d total)\n", result.Total)
	for _, t := range result.Tasks {
		fmt.Printf("  [%s] %s\n", t.Status, t.Title)
	}
	return nil
}

// printNavigator logs navigation, the console's stand-in for a browser
// redirect.
type printNavigator struct {
	logger zerolog.Logger
}

func (n *printNavigator) Navigate(path string) {
	n.logger.Info().Str("path", path).Msg("navigating")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
