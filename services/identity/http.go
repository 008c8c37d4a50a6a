package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"meetpoint/models"
)

// HTTPResolver resolves parties against the user-directory service over
// REST.
type HTTPResolver struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPResolver constructs a resolver with a bounded-timeout client.
func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *HTTPResolver) ResolveParty(ctx context.Context, token string) (models.Party, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/v1/parties/me", nil)
	if err != nil {
		return models.Party{}, fmt.Errorf("failed to build directory request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.Client.Do(req)
	if err != nil {
		return models.Party{}, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Party{}, fmt.Errorf("directory rejected credential: status %d", resp.StatusCode)
	}

	var party models.Party
	if err := json.NewDecoder(resp.Body).Decode(&party); err != nil {
		return models.Party{}, fmt.Errorf("decoding party failed: %w", err)
	}
	return party, nil
}

func (r *HTTPResolver) ProviderByID(ctx context.Context, providerID string) (models.ProviderProfile, error) {
	url := fmt.Sprintf("%s/v1/providers/%s", r.BaseURL, providerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.ProviderProfile{}, fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return models.ProviderProfile{}, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ProviderProfile{}, fmt.Errorf("provider lookup failed: status %d", resp.StatusCode)
	}

	var profile models.ProviderProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return models.ProviderProfile{}, fmt.Errorf("decoding provider profile failed: %w", err)
	}
	return profile, nil
}
