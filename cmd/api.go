package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/shelf/internal/shared"
	"github.com/jmespath-community/go-jmespath"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend, sending the saved token.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	expr := cmd.String("query")
	pretty := cmd.Bool("pretty")

	r.logger.Info("GET request", "path", path)

	resp, err := r.client.Raw(ctx, http.MethodGet, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if expr != "" {
		if !resp.IsJSON {
			return fmt.Errorf("%w: --query needs a JSON response", shared.ErrInvalidArgument)
		}
		result, err := jmespath.Search(expr, resp.JSONData)
		if err != nil {
			return fmt.Errorf("%w: query %q: %v", shared.ErrInvalidArgument, expr, err)
		}
		return r.writeJSON(result, pretty)
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
