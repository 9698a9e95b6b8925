// hmsclient is a small walkthrough CLI for the SDK: it bootstraps the
// persisted session, checks the route guard, and runs one command against
// the backend. Run hmsdevd in another terminal to have something to talk to.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/auth"
	"github.com/vraj-wappnet/go-hms-client/guard"
	"github.com/vraj-wappnet/go-hms-client/httpclient"
	"github.com/vraj-wappnet/go-hms-client/internal/config"
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/session/filestorage"
)

const usage = `usage: hmsclient [flags] <command>

commands:
  login -email <email> -password <password>   authenticate and persist the session
  logout                                      reset and persist the empty session
  status                                      show the current session state
  get -path </some/path>                      GET a backend resource (refreshes on 401)
  guard -path </some/view>                    evaluate the route guard for a view
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	c := config.New()
	setupLogging(c.GetLogLevel())

	if len(os.Args) < 2 {
		fmt.Print(usage)
		return nil
	}
	command := os.Args[1]
	flags := flag.NewFlagSet(command, flag.ExitOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	path := flags.String("path", "", "backend path or view path")
	if err := flags.Parse(os.Args[2:]); err != nil {
		return err
	}

	storage := filestorage.New(c.GetSessionFile())
	store := session.NewStore(session.WithStorage(storage))

	client, err := httpclient.New(c.GetBaseURL(), store, httpclient.WithTimeout(c.GetRequestTimeout()))
	if err != nil {
		return err
	}
	service, err := auth.NewService(store, client, auth.WithStorage(storage))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := service.Bootstrap(ctx); err != nil {
		return err
	}

	switch command {
	case "login":
		displayAppname("HMS Client")
		user, err := service.Login(ctx, auth.LoginParams{Email: *email, Password: *password})
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.FullName(), user.Role)
		return nil

	case "logout":
		service.Logout()
		fmt.Println("logged out")
		return nil

	case "status":
		return printStatus(store.Snapshot())

	case "get":
		if *path == "" {
			return fmt.Errorf("get requires -path")
		}
		var body json.RawMessage
		if err := client.Get(ctx, *path, nil, &body); err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil

	case "guard":
		if *path == "" {
			return fmt.Errorf("guard requires -path")
		}
		g := guard.New(store, service.Ready, guard.DefaultRules()...)
		fmt.Printf("%s -> %s\n", *path, g.Check(*path))
		return nil

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printStatus(snap session.Session) error {
	if !snap.Authenticated {
		fmt.Println("not logged in")
		if snap.Error != "" {
			fmt.Println("last error:", snap.Error)
		}
		return nil
	}
	fmt.Printf("logged in as %s (%s)\n", snap.User.FullName(), snap.User.Role)
	return nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
