package digest

// Route is the outcome of the threshold decision for one group.
type Route int

const (
	// RouteIndividual sends each event as its own message.
	RouteIndividual Route = iota
	// RouteDigest collapses the whole group into a single summary message.
	RouteDigest
)

// Decide routes a group of the given size: below the minimum batch size
// every event goes out individually, at or above it the group becomes one
// digest. Pure classification, no side effects.
func Decide(groupSize, minBatchSize int) Route {
	if groupSize < minBatchSize {
		return RouteIndividual
	}
	return RouteDigest
}
