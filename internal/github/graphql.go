// internal/github/graphql.go
package github

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github-handler/internal/errors"
	"github-handler/internal/model"
)

const searchRepositoriesQuery = `
query ($query: String!, $cursor: String) {
    search(query: $query, type: REPOSITORY, first: 100, after: $cursor) {
        edges {
            node {
                ... on Repository {
                    name
                    url
                    createdAt
                }
            }
        }
        pageInfo {
            endCursor
            hasNextPage
        }
    }
}`

type graphQLRequest struct {
	Query     string          `json:"query"`
	Variables searchVariables `json:"variables"`
}

type searchVariables struct {
	Query  string  `json:"query"`
	Cursor *string `json:"cursor"`
}

type graphQLResponse struct {
	Data *struct {
		Search struct {
			Edges []struct {
				Node model.RepositoryNode `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				EndCursor   *string `json:"endCursor"`
				HasNextPage bool    `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// SearchPage is one page of repository search results.
type SearchPage struct {
	Repositories []model.RepositoryNode
	EndCursor    *string
	HasNextPage  bool
}

// SearchQuery builds the search string for repositories in language created inside w.
func SearchQuery(language string, w model.Window) string {
	return fmt.Sprintf("language:%s created:%s..%s", language, w.StartDate(), w.EndDate())
}

// SearchRepositories runs one page of the repository search, resuming after cursor when it is non-nil.
// A response without a data object yields an error wrapping errors.ErrMissingData.
func (c *Client) SearchRepositories(ctx context.Context, query string, cursor *string) (*SearchPage, error) {
	body := &graphQLRequest{
		Query:     searchRepositoriesQuery,
		Variables: searchVariables{Query: query, Cursor: cursor},
	}
	req, err := c.gh.NewRequest(http.MethodPost, c.graphqlURL, body)
	if err != nil {
		return nil, fmt.Errorf("build graphql request: %w", err)
	}

	var out graphQLResponse
	resp, err := c.gh.Do(ctx, req, &out)
	if err != nil {
		if resp != nil && resp.Response != nil {
			c.rateLimits.Observe(resp.Response)
		}
		return nil, err
	}

	if out.Data == nil {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &apperrors.GraphQLError{Messages: msgs}
	}

	page := &SearchPage{
		EndCursor:   out.Data.Search.PageInfo.EndCursor,
		HasNextPage: out.Data.Search.PageInfo.HasNextPage,
	}
	for _, edge := range out.Data.Search.Edges {
		if edge.Node.URL == "" {
			continue
		}
		page.Repositories = append(page.Repositories, edge.Node)
	}
	return page, nil
}
