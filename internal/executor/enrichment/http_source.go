package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPSource is the production Source: a GLEIF-style LEI registry reached
// over HTTP, following the JSON:API-shaped response the real GLEIF API
// returns (a top-level "data" array of records, each with an "attributes"
// object carrying the legal name, jurisdiction, category, and parent LEI).
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSource returns an HTTPSource querying baseURL, authenticating with
// token (sent as a Bearer token) when non-empty.
func NewHTTPSource(baseURL, token string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HTTPSource) ByIdentifier(ctx context.Context, identifier string) (Record, bool, error) {
	recs, err := h.get(ctx, "/lei-records/"+url.PathEscape(identifier), nil)
	if err != nil {
		return Record{}, false, err
	}
	if len(recs) == 0 {
		return Record{}, false, nil
	}
	return recs[0], true, nil
}

func (h *HTTPSource) ByName(ctx context.Context, name string) (Record, bool, error) {
	recs, err := h.get(ctx, "/lei-records", url.Values{"filter[entity.legalName]": {name}})
	if err != nil {
		return Record{}, false, err
	}
	if len(recs) == 0 {
		return Record{}, false, nil
	}
	return recs[0], true, nil
}

func (h *HTTPSource) ByNamePrefix(ctx context.Context, prefix string, limit int) ([]Record, error) {
	return h.get(ctx, "/lei-records", url.Values{
		"filter[entity.legalName][prefix]": {prefix},
		"page[size]":                       {strconv.Itoa(limit)},
	})
}

func (h *HTTPSource) get(ctx context.Context, path string, query url.Values) ([]Record, error) {
	u := h.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("enrichment: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment: calling source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment: source returned status %d", resp.StatusCode)
	}

	var body leiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("enrichment: decoding response: %w", err)
	}
	return body.records(), nil
}

// leiResponse accepts GLEIF's JSON:API shape, where a single-resource
// endpoint (/lei-records/{id}) returns "data" as one object and a
// collection endpoint (/lei-records?filter=...) returns it as an array.
type leiResponse struct {
	Data []leiRecord `json:"-"`
}

func (r *leiResponse) UnmarshalJSON(b []byte) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if envelope.Data[0] == '[' {
		return json.Unmarshal(envelope.Data, &r.Data)
	}
	var single leiRecord
	if err := json.Unmarshal(envelope.Data, &single); err != nil {
		return err
	}
	r.Data = []leiRecord{single}
	return nil
}

type leiRecord struct {
	ID         string `json:"id"`
	Attributes struct {
		Entity struct {
			LegalName struct {
				Name string `json:"name"`
			} `json:"legalName"`
			LegalJurisdiction string `json:"legalJurisdiction"`
			Category          string `json:"category"`
			AssociatedEntity  struct {
				LEI string `json:"lei"`
			} `json:"associatedEntity"`
		} `json:"entity"`
	} `json:"attributes"`
}

func (r leiResponse) records() []Record {
	out := make([]Record, 0, len(r.Data))
	for _, d := range r.Data {
		out = append(out, Record{
			Identifier:   d.ID,
			Name:         d.Attributes.Entity.LegalName.Name,
			Jurisdiction: d.Attributes.Entity.LegalJurisdiction,
			Category:     d.Attributes.Entity.Category,
			ParentID:     d.Attributes.Entity.AssociatedEntity.LEI,
		})
	}
	return out
}
