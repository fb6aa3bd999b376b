// Package mock provides test double implementations of query sources.
//
// The mocks let coordinator, aggregator and launcher tests run without a
// catalog, a filesystem or an external index, with controlled and
// deterministic behavior.
//
// # Usage in Tests
//
//	// Static results
//	src := mock.NewMockSource("programs", core.Candidate{Title: "Chrome", Score: 90})
//
//	// Custom behavior injection
//	src := mock.NewMockSource("slow").
//	    WithSearchFunc(func(ctx context.Context, text string) ([]core.Candidate, error) {
//	        <-ctx.Done()
//	        return nil, ctx.Err()
//	    })
//
//	// Check call counts
//	count := src.CallCount()
//
// # Default Behavior
//
// MockSource returns its static candidates whose title contains the query
// (case-insensitive), tagged with the source ID.
package mock
