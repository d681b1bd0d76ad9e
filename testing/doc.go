// Package testing provides test utilities for the caseload library.
//
// It follows Go's convention of a dedicated testing-helper package (similar
// to net/http/httptest): embedded NATS servers for exercising the JetStream
// history feed and KV rule source without external dependencies, plus a
// logger that routes to testing.T.
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: types.Logger backed by t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    casetest "github.com/legalops/caseload/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := casetest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
