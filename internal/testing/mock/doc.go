// Package mock provides a configurable MCP server used by tests and by the
// mock-server command.
//
// A server is described by a Config, usually loaded from YAML:
//
//	name: demo
//	tools:
//	  - name: echo
//	    description: Echo a message
//	    input_schema:
//	      type: object
//	      properties:
//	        msg: {type: string}
//	      required: [msg]
//	    responses:
//	      - response: "{{ .msg }}"
//	prompts:
//	  - name: greet
//	    arguments: [{name: who, required: true}]
//	    template: "Say hello to {{ .who }}"
//	resources:
//	  - uri: mem://readme
//	    name: readme
//	    text: hello
//
// Input schemas are advertised exactly as configured. Response strings are
// Go templates over the call arguments with sprig functions available. A
// tool without responses echoes its arguments as JSON.
//
// The server can be served over stdio (ServeStdio), or over SSE and
// streamable HTTP through HTTPServer or Handler. Watch reloads the tool set
// when the configuration file changes.
package mock
