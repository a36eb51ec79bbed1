package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// toolName identifies this client to the E-utilities endpoints, as NCBI
	// asks of automated callers.
	toolName = "pubmed-daily-digest"
)

// Client queries the NCBI E-utilities for new articles in a fixed set of
// journals.
type Client struct {
	client       *http.Client
	baseURL      string
	email        string
	apiKey       string
	journals     []string
	lookbackDays int
	maxResults   int
}

func NewClient(email, apiKey string, journals []string, lookbackDays, maxResults int) *Client {
	return &Client{
		client:       &http.Client{Timeout: 60 * time.Second},
		baseURL:      defaultBaseURL,
		email:        email,
		apiKey:       apiKey,
		journals:     journals,
		lookbackDays: lookbackDays,
		maxResults:   maxResults,
	}
}

// BuildJournalQuery joins exact journal-field matches with OR:
// (("J Clin Oncol"[ta]) OR ("Lancet Oncol"[ta])).
func BuildJournalQuery(journals []string) string {
	parts := make([]string, 0, len(journals))
	for _, j := range journals {
		j = strings.TrimSpace(j)
		if j == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(`("%s"[ta])`, j))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search returns the PMIDs added to PubMed within the lookback window for
// the configured journals, newest publication date first.
func (c *Client) Search(ctx context.Context) ([]string, error) {
	query := url.Values{}
	query.Set("db", "pubmed")
	query.Set("term", BuildJournalQuery(c.journals))
	query.Set("retmode", "json")
	query.Set("datetype", "edat")
	query.Set("reldate", strconv.Itoa(c.lookbackDays))
	query.Set("retmax", strconv.Itoa(c.maxResults))
	query.Set("sort", "pub_date")
	c.identify(query)

	body, err := c.get(ctx, "esearch.fcgi", query)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pubmed: failed to parse esearch response: %w", err)
	}
	return resp.Result.IDList, nil
}

// Fetch retrieves the full abstract records for the given PMIDs as one
// EFetch XML document.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]byte, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("db", "pubmed")
	query.Set("id", strings.Join(pmids, ","))
	query.Set("rettype", "abstract")
	query.Set("retmode", "xml")
	c.identify(query)

	return c.get(ctx, "efetch.fcgi", query)
}

func (c *Client) identify(query url.Values) {
	query.Set("tool", toolName)
	if c.email != "" {
		query.Set("email", c.email)
	}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("pubmed: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", toolName)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pubmed: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pubmed: %s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pubmed: failed to read %s response: %w", endpoint, err)
	}
	return body, nil
}
