// Package api defines the types shared between the mcpnode execution core,
// its transports, and the command line front end.
//
// It holds the connection description (ConnectionSpec), the operation names
// a run can perform, the item and item-result types, the interfaces of the
// external collaborators the core consumes (ParameterSource,
// CredentialSource, Logger, FailureTolerance), and the error taxonomy.
//
// # Error taxonomy
//
//   - ConfigurationError: bad or missing connection parameters
//   - ConnectionError: transport open or handshake failure
//   - RemoteError: a query against an open session failed
//   - ToolNotFoundError, InvalidArgumentsError, ToolExecutionError: tool invocation failures
//   - NoCapabilityError: the server advertised zero tools where tools were required
//
// Every type has an Is helper built on errors.As so wrapped errors are
// recognized:
//
//	if api.IsToolNotFound(err) {
//	    // offer the available tool names
//	}
package api
