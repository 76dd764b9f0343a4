// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/cbr"
	"github.com/poiesic/cbr/casebase"
	"github.com/poiesic/cbr/config"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func nameFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "Case base name",
		Required: required,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cbr",
		Usage: "Case-based reasoning retrieval over stored case bases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Build a case base from a project file and store it",
				Action: importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"p"},
						Usage:    "Path to the YAML project file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not report progress",
					},
				},
			},
			{
				Name:   "retrieve",
				Usage:  "Find the stored case most similar to a query",
				Action: retrieveCommand,
				Flags: []cli.Flag{
					dbFlag(),
					nameFlag(false),
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Project file supplying the case base name and similarity assignment",
					},
					&cli.StringSliceFlag{
						Name:    "set",
						Aliases: []string{"s"},
						Usage:   "Query attribute as FIELD=VALUE (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "sim",
						Usage: "Similarity assignment as FIELD=FUNCTION (repeatable, overrides the project)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size for parallel retrieval (0 scans sequentially)",
						Value: 0,
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print the score of each assigned field",
					},
				},
			},
			{
				Name:   "values",
				Usage:  "List the distinct values of a field",
				Action: valuesCommand,
				Flags: []cli.Flag{
					dbFlag(),
					nameFlag(true),
					&cli.StringFlag{
						Name:     "field",
						Aliases:  []string{"f"},
						Usage:    "Field name",
						Required: true,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List stored case bases",
				Action: listCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "delete",
				Usage:  "Delete a stored case base",
				Action: deleteCommand,
				Flags:  []cli.Flag{dbFlag(), nameFlag(true)},
			},
			{
				Name:   "functions",
				Usage:  "List the available similarity functions",
				Action: functionsCommand,
			},
		},
	}
}

func openDatabase(c *cli.Context) (*cbr.Database, error) {
	return cbr.NewDatabase(c.String("db"), cbr.WithLogger(slog.Default()))
}

func importCommand(c *cli.Context) error {
	project, err := config.Load(c.String("project"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	progress := c.App.ErrWriter
	if c.Bool("quiet") {
		progress = nil
	}

	cb, err := db.ImportProject(c.Context, project, progress)
	if err != nil {
		return err
	}
	defer cb.Release()

	fmt.Fprintf(c.App.Writer, "imported %s: %s\n", project.Name, cb)
	return nil
}

func retrieveCommand(c *cli.Context) error {
	name := c.String("name")
	var assignment casebase.Assignment

	if path := c.String("project"); path != "" {
		project, err := config.Load(path)
		if err != nil {
			return err
		}
		if name == "" {
			name = project.Name
		}
		if assignment, err = project.Assignment(); err != nil {
			return err
		}
	}
	if name == "" {
		return fmt.Errorf("case base name is required: use --name or --project")
	}

	if sims := c.StringSlice("sim"); len(sims) > 0 {
		var err error
		if assignment, err = parseAssignment(sims); err != nil {
			return err
		}
	}
	if len(assignment) == 0 {
		return fmt.Errorf("no similarity assignment: use --sim or a project with a similarity section")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var opts []casebase.Option
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, casebase.WithWorkers(workers))
	}
	cb, err := db.Open(c.Context, name, opts...)
	if err != nil {
		return err
	}
	defer cb.Release()

	query, err := parseQuery(cb.Schema(), c.StringSlice("set"))
	if err != nil {
		return err
	}

	result, err := cb.Retrieve(c.Context, query, assignment)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, result)
	fmt.Fprintf(c.App.Writer, "similarity: %.6f\n", result.Similarity)
	if c.Bool("explain") {
		for _, field := range assignment.Fields() {
			fmt.Fprintf(c.App.Writer, "  %s: %.6f\n", field, result.SimPerField[field])
		}
	}
	return nil
}

func valuesCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cb, err := db.Open(c.Context, c.String("name"))
	if err != nil {
		return err
	}
	defer cb.Release()

	values, err := cb.ValuesByField(c.String("field"))
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(c.App.Writer, v)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	infos, err := db.List(c.Context)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Fprintf(c.App.Writer, "%s\t%d cases\tproblem=[%s]\tsolution=[%s]\n",
			info.Name,
			info.CaseCount,
			strings.Join(info.Schema.ProblemFields(), " "),
			strings.Join(info.Schema.SolutionFields(), " "))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Delete(c.Context, c.String("name")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted %s\n", c.String("name"))
	return nil
}

func functionsCommand(c *cli.Context) error {
	for _, name := range similarity.Names() {
		fn, err := similarity.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", name, fn.Kind())
	}
	return nil
}

// parseAssignment turns FIELD=FUNCTION pairs into an assignment, keeping
// the order given on the command line.
func parseAssignment(pairs []string) (casebase.Assignment, error) {
	assignment := make(casebase.Assignment, 0, len(pairs))
	for _, pair := range pairs {
		field, name, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		fn, err := similarity.Lookup(name)
		if err != nil {
			return nil, err
		}
		assignment = append(assignment, casebase.Assign(field, fn))
	}
	return assignment, nil
}

// parseQuery turns FIELD=VALUE pairs into a query. Values are parsed by the
// field's declared type; undeclared types treat digit strings as integers.
func parseQuery(schema *core.Schema, pairs []string) (*core.Query, error) {
	problem := make(core.Attributes, len(pairs))
	for _, pair := range pairs {
		name, raw, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		field, role, ok := schema.Lookup(name)
		if !ok || role != core.RoleProblem {
			return nil, fmt.Errorf("%w: %s is not a problem field", core.ErrUnknownField, name)
		}
		v, err := field.Type.Parse(raw, true)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		problem[name] = v
	}
	return core.NewQuery(problem), nil
}

func splitPair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected FIELD=VALUE, got %q", pair)
	}
	return key, value, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
