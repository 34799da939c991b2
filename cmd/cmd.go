// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/urfave/cli/v3"
)

func formatNames() string {
	names := []string{}
	for _, f := range formatter.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// setupCommand creates the config file and initializes storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize local storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	credentialFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email",
			Sources: cli.EnvVars("SHELF_EMAIL"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password (prompted when omitted on a terminal)",
			Sources: cli.EnvVars("SHELF_PASSWORD"),
		},
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the saved session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in and save the session",
				Flags:  credentialFlags,
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and save the session",
				Flags: append(credentialFlags,
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Display name",
					},
					&cli.StringFlag{
						Name:  "genres",
						Usage: "Favourite genres, comma separated",
					},
				),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the saved session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// booksCommand handles library operations
func booksCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}

	return &cli.Command{
		Name:    "books",
		Aliases: []string{"b"},
		Usage:   "Browse and manage your library",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List books, optionally for one status",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "status",
						Aliases: []string{"s"},
						Usage:   "ALL, TO_READ, READING, COMPLETED or DNF",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.BooksList,
			},
			{
				Name:  "status",
				Usage: "Move a book to another status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.BooksStatus,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a book from the library",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.BooksRemove,
			},
			{
				Name:      "show",
				Usage:     "Show a book with its description",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "width",
						Usage: "Wrap width for the description",
						Value: 80,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BooksShow,
			},
			{
				Name:      "open",
				Usage:     "Open the catalog page of a book in the browser",
				Arguments: idArg,
				Action:    r.BooksOpen,
			},
			{
				Name:  "export",
				Usage: "Export the library, one file per status",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + formatNames(),
						Value:   string(formatter.FormatJSON),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "./export",
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover images",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent cover downloads",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the export manifest as JSON",
					},
				},
				Action: r.BooksExport,
			},
		},
	}
}

// searchCommand searches the catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the book catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "add",
				Usage: "Add the result with this id to your library (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "JMESPath expression applied to the response",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "search",
				Usage: "Open the search overlay with this query",
			},
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "Directory for exports started from the TUI",
				Value: "./export",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: " + formatNames(),
				Value: string(formatter.FormatJSON),
			},
		},
		Action: r.TUI,
	}
}
