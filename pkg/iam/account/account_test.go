package account_test

import (
	"testing"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := account.NormalizeEmail("  User@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got)

	sharp, err := account.NormalizeEmail("Straße@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "straße@example.com", sharp)

	plain, err := account.NormalizeEmail("strasse@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, sharp, plain)

	for _, raw := range []string{"", "   ", "not-an-email", "Bob <bob@example.com>", "<bob@example.com>", "a@b@c"} {
		_, err := account.NormalizeEmail(raw)
		require.Error(t, err, raw)
		assert.True(t, errx.HasCode(err, account.CodeInvalidEmail), raw)
		assert.Equal(t, 400, errx.From(err).HTTPStatus)
	}
}
