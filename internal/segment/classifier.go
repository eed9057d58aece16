package segment

import "context"

// Classifier assigns per-second activity labels from an external audio
// classifier. Implementations are optional; a nil classifier leaves every
// second at the neutral prior.
type Classifier interface {
	Labels(ctx context.Context, path string, seconds int) ([]Label, error)
}
