package denmark

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
)

func TestFetchIsNotImplemented(t *testing.T) {
	p := New()

	rec, err := p.Fetch(context.Background(), "10150817", "10150817")

	assert.Nil(t, rec)
	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.CategoryNotImplemented, pe.Category)
	assert.Equal(t, http.StatusNotImplemented, pe.Status)
	assert.Equal(t, models.JurisdictionDenmark, p.Jurisdiction())
}
