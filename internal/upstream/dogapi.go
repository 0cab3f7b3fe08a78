package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/LavishGent/breedbase/internal/types"
)

// DogAPI reads the breed list and breed images from the breed-data API.
type DogAPI struct {
	client  *Client
	baseURL string
	apiKey  types.SecretString
}

// NewDogAPI creates a breed-data API client. An empty apiKey sends no x-api-key header.
func NewDogAPI(client *Client, baseURL string, apiKey types.SecretString) *DogAPI {
	return &DogAPI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (d *DogAPI) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := d.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if !d.apiKey.IsEmpty() {
		req.Header.Set("x-api-key", d.apiKey.Value())
	}
	return req, nil
}

// Breeds returns the full breed list in upstream order.
func (d *DogAPI) Breeds(ctx context.Context) ([]types.BreedRaw, error) {
	req, err := d.newRequest(ctx, "/breeds", nil)
	if err != nil {
		return nil, err
	}

	var breeds []types.BreedRaw
	if err := d.client.doJSON(req, SourceDogAPI, "dogapi.breeds", &breeds); err != nil {
		return nil, err
	}
	return breeds, nil
}

type dogImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ImageForBreed returns the URL of the first image the API has for breedID.
func (d *DogAPI) ImageForBreed(ctx context.Context, breedID int) (string, error) {
	req, err := d.newRequest(ctx, "/images/search", url.Values{"breed_ids": {strconv.Itoa(breedID)}})
	if err != nil {
		return "", err
	}

	var images []dogImage
	if err := d.client.doJSON(req, SourceDogAPI, "dogapi.images", &images); err != nil {
		return "", err
	}
	for _, img := range images {
		if img.URL != "" {
			return img.URL, nil
		}
	}
	return "", types.NewNotFoundError("dogapi.images", fmt.Sprintf("no image for breed %d", breedID))
}
