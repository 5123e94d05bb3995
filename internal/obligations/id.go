package obligations

import (
	"fmt"
	"hash/fnv"

	"github.com/flowgraph/core/internal/draftgraph"
)

// ContentID derives a stable obligation id from the policy name and
// subject so the same underlying need always hashes to the same id
// across fixpoint iterations — reruns discharge or re-block the same
// obligation instead of duplicating it.
func ContentID(policyName string, subject draftgraph.ObligationSubject) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", policyName, subject.Kind, subject.EdgeID, subject.Port.BlockID, subject.Port.PortID)
	return fmt.Sprintf("ob_%016x", h.Sum64())
}

// ContentIDWithTypes is used by policies (adapters.v1) whose obligation
// must not be re-created once the resolved type pair it targeted has
// changed, since a spliced adapter changes the edge's endpoints.
func ContentIDWithTypes(policyName string, subject draftgraph.ObligationSubject, typeSignature string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s", policyName, subject.Kind, subject.EdgeID, subject.Port.BlockID, subject.Port.PortID, typeSignature)
	return fmt.Sprintf("ob_%016x", h.Sum64())
}
