// Package ols implements the traversal port against an OLS4-style term
// lookup service. Queries resolve each seed CURIE to a term IRI, then
// page through the service's hierarchical ancestor/descendant endpoints.
package ols

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ontokit/vskit/backend"
)

// DefaultBaseURL is the public EBI OLS4 endpoint, used when a binding
// gives no URL.
const DefaultBaseURL = "https://www.ebi.ac.uk/ols4"

// pageSize keeps the number of round trips low without tripping the
// service's response size limits.
const pageSize = 500

func init() {
	backend.Register("ols", func(b backend.Binding) (backend.Port, error) {
		baseURL := b.URL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		ontology := strings.TrimPrefix(b.Shorthand, "ols:")
		return New(baseURL, ontology), nil
	})
}

// Client is an OLS term-service backend.
type Client struct {
	baseURL string

	// ontology is the service-side ontology id. Empty means derive it
	// per seed from the CURIE prefix, the service's own convention.
	ontology string

	httpClient *http.Client
}

// New creates a client for the service at baseURL, scoped to the given
// ontology id (may be empty).
func New(baseURL, ontology string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		ontology:   ontology,
		httpClient: &http.Client{},
	}
}

// term is the subset of the service's term representation we consume.
type term struct {
	IRI         string   `json:"iri"`
	OboID       string   `json:"obo_id"`
	ShortForm   string   `json:"short_form"`
	Label       string   `json:"label"`
	Description []string `json:"description"`
}

// termsPage is one page of a terms listing.
type termsPage struct {
	Embedded struct {
		Terms []term `json:"terms"`
	} `json:"_embedded"`
	Page struct {
		Number     int `json:"number"`
		TotalPages int `json:"totalPages"`
	} `json:"page"`
}

// Traverse implements backend.Port.
func (c *Client) Traverse(ctx context.Context, spec backend.TraversalSpec) ([]backend.ResolvedNode, error) {
	relation := c.relation(spec)

	var nodes []backend.ResolvedNode
	seen := make(map[string]bool)
	// Seeds belong to the result only when asked for, even when one seed
	// is reachable from another.
	if !spec.IncludeSelf {
		for _, seed := range spec.Seeds {
			seen[seed] = true
		}
	}
	emit := func(t term) {
		id := t.OboID
		if id == "" {
			id = t.ShortForm
		}
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		nodes = append(nodes, backend.ResolvedNode{
			ID:         id,
			Label:      t.Label,
			Definition: strings.Join(t.Description, " "),
			Source:     c.source(),
		})
	}

	for _, seed := range spec.Seeds {
		ontology := c.ontologyFor(seed)
		seedTerm, err := c.lookupTerm(ctx, ontology, seed)
		if err != nil {
			return nil, err
		}
		if spec.IncludeSelf {
			emit(*seedTerm)
		}
		if err := c.pageTerms(ctx, ontology, seedTerm.IRI, relation, emit); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// relation maps a traversal spec to the service endpoint. Plain is-a
// closures use the ancestors/descendants endpoints; any other predicate
// set uses the hierarchical variants, which include part-of edges.
func (c *Client) relation(spec backend.TraversalSpec) string {
	up := spec.Direction != backend.DirectionDescendants
	if spec.Direct {
		if up {
			return "parents"
		}
		return "children"
	}
	isaOnly := true
	for _, p := range spec.Predicates {
		if p != backend.DefaultPredicate {
			isaOnly = false
			break
		}
	}
	switch {
	case isaOnly && up:
		return "ancestors"
	case isaOnly:
		return "descendants"
	case up:
		return "hierarchicalAncestors"
	default:
		return "hierarchicalDescendants"
	}
}

// ontologyFor returns the ontology id for a seed: the configured one, or
// the seed's lowercased CURIE prefix.
func (c *Client) ontologyFor(seed string) string {
	if c.ontology != "" {
		return c.ontology
	}
	if i := strings.Index(seed, ":"); i > 0 {
		return strings.ToLower(seed[:i])
	}
	return ""
}

// lookupTerm resolves a seed CURIE to its term record.
func (c *Client) lookupTerm(ctx context.Context, ontology, curie string) (*term, error) {
	endpoint := fmt.Sprintf("%s/api/ontologies/%s/terms?obo_id=%s",
		c.baseURL, url.PathEscape(ontology), url.QueryEscape(curie))

	var page termsPage
	status, err := c.get(ctx, endpoint, &page)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || len(page.Embedded.Terms) == 0 {
		return nil, &backend.UnknownNodeError{Backend: c.source(), Node: curie}
	}
	return &page.Embedded.Terms[0], nil
}

// pageTerms walks every page of a traversal endpoint.
func (c *Client) pageTerms(ctx context.Context, ontology, iri, relation string, emit func(term)) error {
	// The service requires term IRIs double-encoded in the path.
	encodedIRI := url.QueryEscape(url.QueryEscape(iri))

	for pageNum := 0; ; pageNum++ {
		endpoint := fmt.Sprintf("%s/api/ontologies/%s/terms/%s/%s?page=%d&size=%d",
			c.baseURL, url.PathEscape(ontology), encodedIRI, relation, pageNum, pageSize)

		var page termsPage
		status, err := c.get(ctx, endpoint, &page)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			// Traversal endpoints 404 on leaf terms with no relatives.
			return nil
		}
		for _, t := range page.Embedded.Terms {
			emit(t)
		}
		if pageNum+1 >= page.Page.TotalPages {
			return nil
		}
	}
}

// get performs one JSON GET. Connection failures become UnavailableError;
// 404 is returned to the caller for endpoint-specific handling.
func (c *Client) get(ctx context.Context, endpoint string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &backend.UnavailableError{Backend: c.source(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &backend.UnavailableError{
			Backend: c.source(),
			Err:     fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &backend.UnavailableError{
			Backend: c.source(),
			Err:     fmt.Errorf("decode response: %w", err),
		}
	}
	return resp.StatusCode, nil
}

// Close implements backend.Port. The HTTP client holds no resources
// beyond idle connections.
func (c *Client) Close(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) source() string {
	if c.ontology != "" {
		return "ols:" + c.ontology
	}
	return c.baseURL
}
