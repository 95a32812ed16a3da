package provider

import (
	"context"
	"fmt"

	"github.com/Guliveer/devicescope/internal/models"
)

// OrientationProvider reports the screen orientation. The token source is a
// function so callers can feed live rotation updates.
type OrientationProvider struct {
	token func() string
}

// NewOrientationProvider creates an orientation provider reading its token
// from source on every query.
func NewOrientationProvider(source func() string) *OrientationProvider {
	return &OrientationProvider{token: source}
}

// StaticOrientation returns a source that always yields token.
func StaticOrientation(token string) func() string {
	return func() string { return token }
}

// Name returns the provider identifier.
func (o *OrientationProvider) Name() string { return "orientation" }

// Keys returns the attribute keys owned by this provider.
func (o *OrientationProvider) Keys() []string {
	return []string{"Screen Orientation", "Orientation"}
}

// Query maps the current token to an orientation. An empty token means the
// host does not know; any other unrecognised token is an error.
func (o *OrientationProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token := o.token()
	orientation := models.ParseOrientation(token)
	if orientation == models.OrientationUnknown && token != "" {
		return nil, fmt.Errorf("unrecognised orientation %q", token)
	}
	return models.ProviderResult{{Key: "Screen Orientation", Value: models.Text(orientation.String())}}, nil
}

// Fallback reports the orientation as unknown.
func (o *OrientationProvider) Fallback(error) models.ProviderResult {
	return models.ErrorResult("Orientation", unknown)
}

// IsAvailable reports whether a token source was supplied.
func (o *OrientationProvider) IsAvailable() bool { return o.token != nil }
