package process

import "testing"

func TestKillTree_NonPositivePID(t *testing.T) {
	t.Parallel()

	// Must not signal the caller's own process group.
	for _, pid := range []int{0, -1} {
		KillTree(pid)
	}
}
