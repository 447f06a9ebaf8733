package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher("add some salt")

	t.Run("hashing is deterministic", func(t *testing.T) {
		require.Equal(t, h.Hash("s3cret"), h.Hash("s3cret"))
	})

	t.Run("different passwords hash differently", func(t *testing.T) {
		require.NotEqual(t, h.Hash("s3cret"), h.Hash("s3cret2"))
	})

	t.Run("salt changes the digest", func(t *testing.T) {
		other := NewPasswordHasher("other salt")
		require.NotEqual(t, h.Hash("s3cret"), other.Hash("s3cret"))
	})

	t.Run("verify accepts the original password only", func(t *testing.T) {
		encoded := h.Hash("s3cret")
		require.True(t, h.Verify("s3cret", encoded))
		require.False(t, h.Verify("wrong", encoded))
		require.False(t, h.Verify("", encoded))
	})
}
