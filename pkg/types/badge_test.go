package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupBadgeLabel(t *testing.T) {
	require.Equal(t, "HOT", SingleBadge(BadgeTypeHot).Label())
	require.Equal(t, "none", NoBadge().Label())
	require.Equal(t, "none", MixedBadge().Label())
}

func TestGroupBadgeJSON(t *testing.T) {
	b, err := json.Marshal(SingleBadge(BadgeTypeSale))
	require.NoError(t, err)
	require.Equal(t, `"SALE"`, string(b))

	b, err = json.Marshal(MixedBadge())
	require.NoError(t, err)
	require.Equal(t, `"none"`, string(b))
}
