// Package dispatch executes calls to configured interfaces.
//
// A Dispatcher wraps one interface profile. Its state is fixed when it is
// built: a profile whose status is "mock" or "mockerr" is served by a mock
// engine from the interface's rule file, any other status is sent to the
// URL the profile maps that status to.
//
// Live responses are decoded from the profile's charset and, for JSON
// profiles, parsed. The "raw" encoding skips both steps. Failures are
// reported as typed errors that match the package sentinels:
//
//	resp, err := d.Do(ctx, dispatch.Params{"q": "shoes"}, cookie)
//	if errors.Is(err, dispatch.ErrTransport) {
//		// network failure
//	}
//
// Dispatchers are obtained from a Factory, which builds at most one
// dispatcher per interface id.
package dispatch
