package server

import (
	"testing"

	"goldwatch/core/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentifierTwoTokens(t *testing.T) {
	ident, err := ResolveIdentifier("Everlook-Alliance", DisplayDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "everlook", ident.Name)
	assert.Equal(t, FactionAlliance, ident.Faction)
}

func TestResolveIdentifierThreeTokens(t *testing.T) {
	ident, err := ResolveIdentifier("Grobbulus-US-Horde", DisplayDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "grobbulus us", ident.Name)
	assert.Equal(t, FactionHorde, ident.Faction)
}

func TestResolveIdentifierFeedDelimiter(t *testing.T) {
	ident, err := ResolveIdentifier("Grobbulus-US-Horde", FeedDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "grobbulus-us", ident.Name)
	assert.Equal(t, FactionHorde, ident.Faction)
}

func TestResolveIdentifierStripsApostrophesInFeedMode(t *testing.T) {
	ident, err := ResolveIdentifier("Ten'Storms-Horde", FeedDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "tenstorms", ident.Name)

	// Display mode keeps the apostrophe.
	ident, err = ResolveIdentifier("Ten'Storms-Horde", DisplayDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "ten'storms", ident.Name)
}

func TestResolveIdentifierMissingFaction(t *testing.T) {
	_, err := ResolveIdentifier("everlook", DisplayDelimiter)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "must contain a faction")
}

func TestResolveIdentifierUnknownFaction(t *testing.T) {
	_, err := ResolveIdentifier("everlook-atlantis", DisplayDelimiter)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestResolveIdentifierTooManyTokens(t *testing.T) {
	_, err := ResolveIdentifier("one-two-three-horde", DisplayDelimiter)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestResolveIdentifierEmpty(t *testing.T) {
	for _, identifier := range []string{"", "   "} {
		_, err := ResolveIdentifier(identifier, DisplayDelimiter)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	}
}

func TestUniqueName(t *testing.T) {
	srv := Server{Name: "Grobbulus US", Faction: FactionHorde}
	assert.Equal(t, "grobbulus-us-horde", srv.UniqueName())

	srv = Server{Name: "Ten'Storms", Faction: FactionAlliance}
	assert.Equal(t, "tenstorms-alliance", srv.UniqueName())
}
