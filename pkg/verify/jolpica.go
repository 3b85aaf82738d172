// Package verify cross-checks the telemetry-derived leaderboard against
// the Jolpica F1 API (the open-source Ergast successor) and corrects it
// when the two disagree. The API is rate-limited to about 200 requests per
// hour unauthenticated, so results are cached on disk and the network is
// hit at most once per session.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://api.jolpi.ca/ergast"

// Result is one driver's official classification.
type Result struct {
	Code     string
	Position int
	DriverID string
	Status   string
}

// Client fetches official race results.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// jolpicaResponse mirrors the nested Ergast payload shape.
type jolpicaResponse struct {
	MRData struct {
		RaceTable struct {
			Races []struct {
				Results []struct {
					Position string `json:"position"`
					Status   string `json:"status"`
					Driver   struct {
						Code     string `json:"code"`
						DriverID string `json:"driverId"`
					} `json:"Driver"`
				} `json:"Results"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

// FetchRaceResults returns the official classification for a race. Drivers
// without a numeric position (retired, disqualified) are mapped to the
// non-classified sentinel so they sort behind every finisher.
func (c *Client) FetchRaceResults(ctx context.Context, year, round int) ([]Result, error) {
	url := fmt.Sprintf("%s/f1/%d/%d/results.json", c.baseURL, year, round)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building results request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching race results for %d round %d", year, round)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("results API returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading results response")
	}

	var payload jolpicaResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshalling results response")
	}

	races := payload.MRData.RaceTable.Races
	if len(races) == 0 {
		return nil, errors.Errorf("no race data for %d round %d", year, round)
	}
	raw := races[0].Results
	if len(raw) == 0 {
		return nil, errors.Errorf("no results for %d round %d", year, round)
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		position, err := strconv.Atoi(r.Position)
		if err != nil {
			position = nonClassifiedPosition
		}
		results = append(results, Result{
			Code:     r.Driver.Code,
			Position: position,
			DriverID: r.Driver.DriverID,
			Status:   r.Status,
		})
	}
	return results, nil
}
