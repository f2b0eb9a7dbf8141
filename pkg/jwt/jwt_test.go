package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/pos-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func TestGenerateYParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "tenant-1", "store-1", "cajero", "pos-api", 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "store-1", claims.StoreID)
	assert.Equal(t, "cajero", claims.Role)
	assert.Equal(t, "pos-api", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "tenant-1", "store-1", "cajero", "pos-api", 60)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "tenant-1", "store-1", "cajero", "pos-api", -1)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, token)
	assert.Error(t, err)
}

func TestParse_TokenMalformado(t *testing.T) {
	_, err := jwt.Parse(secret, "no-es-un-jwt")
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "tenant-1", "store-1", "cajero", "pos-api", 60)
	assert.Error(t, err)

	_, err = jwt.Parse("", "lo-que-sea")
	assert.Error(t, err)
}
