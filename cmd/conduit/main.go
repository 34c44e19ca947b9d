// Command conduit drives the client actors against a Conduit API from the
// terminal.
//
//	$ conduit login --email peter@conduit.dev --password password
//	$ conduit feed --personal
//	$ conduit article hi
//	$ conduit comment add hi "nice one"
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		}
		stop()
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	credentials := []cli.Flag{
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
	}

	return &cli.Command{
		Name:   "conduit",
		Usage:  "read and write on a Conduit site",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "API root, overrides client.base_url",
				Sources: cli.EnvVars("CONDUIT_API"),
			},
			&cli.StringFlag{
				Name:  "token-file",
				Usage: "where the session token is kept, overrides storage.token_file",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "bound for every command, overrides client.timeout",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "error",
				Usage: "actor and request log level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "sign in and keep the session",
				Flags:  credentials,
				Action: withHost(loginAction),
			},
			{
				Name:  "register",
				Usage: "sign up and keep the session",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				}, credentials...),
				Action: withHost(registerAction),
			},
			{
				Name:   "logout",
				Usage:  "forget the session",
				Action: withHost(logoutAction),
			},
			{
				Name:   "whoami",
				Usage:  "show the signed in user",
				Action: withHost(whoamiAction),
			},
			{
				Name:  "feed",
				Usage: "list articles",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "personal", Usage: "articles of followed authors"},
					&cli.StringFlag{Name: "tag"},
					&cli.StringFlag{Name: "author"},
					&cli.StringFlag{Name: "favorited", Usage: "articles favorited by this user"},
					&cli.IntFlag{Name: "limit", Usage: "page size, 20 when unset"},
					&cli.IntFlag{Name: "offset"},
				},
				Action: withHost(feedAction),
			},
			{
				Name:   "tags",
				Usage:  "list popular tags",
				Action: withHost(tagsAction),
			},
			{
				Name:      "article",
				Usage:     "show an article with its comments",
				ArgsUsage: "<slug>",
				Action:    withHost(articleAction),
			},
			{
				Name:      "favorite",
				Usage:     "favorite an article, or unfavorite it",
				ArgsUsage: "<slug>",
				Action:    withHost(favoriteAction),
			},
			{
				Name:      "follow",
				Usage:     "follow an author, or unfollow them",
				ArgsUsage: "<username>",
				Action:    withHost(followAction),
			},
			{
				Name:  "comment",
				Usage: "comment on articles",
				Commands: []*cli.Command{
					{
						Name:      "add",
						ArgsUsage: "<slug> <body>",
						Action:    withHost(commentAddAction),
					},
					{
						Name:      "delete",
						ArgsUsage: "<slug> <id>",
						Action:    withHost(commentDeleteAction),
					},
				},
			},
			{
				Name:  "publish",
				Usage: "write a new article, or update one with --slug",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "slug"},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "body", Aliases: []string{"b"}},
					&cli.StringSliceFlag{Name: "tag", Usage: "repeat or separate with commas"},
				},
				Action: withHost(publishAction),
			},
			{
				Name:  "settings",
				Usage: "update the signed in user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "bio"},
					&cli.StringFlag{Name: "image"},
					&cli.StringFlag{Name: "password"},
				},
				Action: withHost(settingsAction),
			},
		},
	}
}
